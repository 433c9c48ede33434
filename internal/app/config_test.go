package app

import (
	"context"
	"strings"
	"testing"

	"github.com/florianilch/agentgate/internal/credential"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr: "127.0.0.1:4000",
			MasterKey:  "sk-test-master-key",
		},
		Auth: AuthConfig{
			Storage: TokenStorageTypeKeyring,
		},
		Agent: AgentConfig{
			Binary: "claude",
		},
		Models: []ModelAliasConfig{
			{Name: "gpt-4o", Targets: []string{"claude-sonnet-4-5"}},
		},
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestConfigValidateMasterKeyMissing(t *testing.T) {
	cfg := validConfig()
	cfg.Server.MasterKey = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing master key")
	}
	if !strings.Contains(err.Error(), "master_key") {
		t.Errorf("error should point at master_key, got: %v", err)
	}
}

func TestConfigValidateMasterKeyPrefix(t *testing.T) {
	cfg := validConfig()
	cfg.Server.MasterKey = "not-a-secret-key"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for master key without sk- prefix")
	}
	if !strings.Contains(err.Error(), `"sk-"`) {
		t.Errorf("error should mention the required prefix, got: %v", err)
	}
}

func TestConfigValidateNoModels(t *testing.T) {
	cfg := validConfig()
	cfg.Models = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty model list")
	}
}

func TestConfigValidateModelWithoutTargets(t *testing.T) {
	cfg := validConfig()
	cfg.Models = []ModelAliasConfig{{Name: "gpt-4o"}}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for alias without targets")
	}
}

func TestConfigValidateUnknownStorage(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.Storage = "vault"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown storage type")
	}
}

func TestConfigValidateFileStorageRequiresPath(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.Storage = TokenStorageTypeFile
	cfg.Auth.TokenFile = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for file storage without token_file")
	}
}

func TestConfigValidateEnvStorageRequiresVar(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.Storage = TokenStorageTypeEnv
	cfg.Auth.TokenEnvVar = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for env storage without token_env_var")
	}
}

func TestNewTokenSourceSelectsBackend(t *testing.T) {
	tests := []struct {
		name string
		auth AuthConfig
		want any
	}{
		{
			name: "env",
			auth: AuthConfig{Storage: TokenStorageTypeEnv, TokenEnvVar: "TEST_TOKEN"},
			want: &credential.EnvSource{},
		},
		{
			name: "file",
			auth: AuthConfig{Storage: TokenStorageTypeFile, TokenFile: "/tmp/token"},
			want: &credential.FileSource{},
		},
		{
			name: "keyring",
			auth: AuthConfig{Storage: TokenStorageTypeKeyring},
			want: &credential.KeyringSource{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, err := tt.auth.NewTokenSource()
			if err != nil {
				t.Fatalf("NewTokenSource: %v", err)
			}

			switch tt.want.(type) {
			case *credential.EnvSource:
				if _, ok := source.(*credential.EnvSource); !ok {
					t.Errorf("got %T, want *credential.EnvSource", source)
				}
			case *credential.FileSource:
				if _, ok := source.(*credential.FileSource); !ok {
					t.Errorf("got %T, want *credential.FileSource", source)
				}
			case *credential.KeyringSource:
				if _, ok := source.(*credential.KeyringSource); !ok {
					t.Errorf("got %T, want *credential.KeyringSource", source)
				}
			}
		})
	}
}

func TestNewTokenStoreRejectsEnvStorage(t *testing.T) {
	auth := AuthConfig{Storage: TokenStorageTypeEnv, TokenEnvVar: "TEST_TOKEN"}

	if _, err := auth.NewTokenStore(); err == nil {
		t.Fatal("expected error for env storage store")
	}
}

func TestNewTokenStoreFileRoundTrip(t *testing.T) {
	path := t.TempDir() + "/token"
	auth := AuthConfig{Storage: TokenStorageTypeFile, TokenFile: path}

	store, err := auth.NewTokenStore()
	if err != nil {
		t.Fatalf("NewTokenStore: %v", err)
	}

	ctx := context.Background()
	if err := store.Write(ctx, "oat-secret"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	token, err := store.Token(ctx)
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "oat-secret" {
		t.Errorf("got token %q, want %q", token, "oat-secret")
	}
}

func TestAliasTable(t *testing.T) {
	cfg := validConfig()
	cfg.Models = []ModelAliasConfig{
		{Name: "gpt-4o", Targets: []string{"claude-sonnet-4-5", "claude-opus-4-5"}},
		{Name: "gpt-4o-mini", Targets: []string{"claude-haiku-4-5"}},
	}

	table, err := cfg.aliasTable()
	if err != nil {
		t.Fatalf("aliasTable: %v", err)
	}

	targets, err := table.Resolve("gpt-4o")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(targets) != 2 || targets[0] != "claude-sonnet-4-5" {
		t.Errorf("unexpected targets: %v", targets)
	}
}
