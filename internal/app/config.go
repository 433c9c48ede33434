package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/florianilch/agentgate/internal/agentcli"
	"github.com/florianilch/agentgate/internal/credential"
	"github.com/florianilch/agentgate/internal/modelalias"
)

// TokenStorageType selects where the upstream OAuth token lives.
type TokenStorageType string

const (
	// TokenStorageTypeEnv reads the token from an environment variable.
	// Read-only: auth login/logout refuse to operate on it.
	TokenStorageTypeEnv TokenStorageType = "env"

	// TokenStorageTypeFile reads and writes the token in a file.
	TokenStorageTypeFile TokenStorageType = "file"

	// TokenStorageTypeKeyring uses the operating system keyring.
	TokenStorageTypeKeyring TokenStorageType = "keyring"
)

// Keyring coordinates for the stored OAuth token.
const (
	keyringService = "agentgate"
	keyringUser    = "anthropic-oauth"
)

// masterKeyPrefix is required on client-facing keys so they are recognizable
// as OpenAI-style secrets and never confused with upstream OAuth tokens.
const masterKeyPrefix = "sk-"

// Config is the full application configuration, populated from defaults, the
// YAML config file, and AGENTGATE_* environment variables.
type Config struct {
	Server ServerConfig       `koanf:"server"`
	Auth   AuthConfig         `koanf:"auth"`
	Agent  AgentConfig        `koanf:"agent"`
	Models []ModelAliasConfig `koanf:"models" validate:"min=1,dive"`
}

// ServerConfig configures the HTTP listener and inbound authentication.
type ServerConfig struct {
	ListenAddr      string `koanf:"listen_addr" validate:"required"`
	MasterKey       string `koanf:"master_key"`
	MaxRequestBytes int64  `koanf:"max_request_bytes" validate:"gte=0"`
}

// AuthConfig configures the upstream OAuth token storage.
type AuthConfig struct {
	Storage TokenStorageType `koanf:"storage" validate:"required,oneof=env file keyring"`

	// TokenFile is the token path for file storage.
	TokenFile string `koanf:"token_file"`

	// TokenEnvVar is the variable name for env storage.
	TokenEnvVar string `koanf:"token_env_var"`
}

// AgentConfig configures the upstream agent CLI.
type AgentConfig struct {
	Binary string `koanf:"binary" validate:"required"`
}

// ModelAliasConfig is one public model name with its ordered upstream targets.
type ModelAliasConfig struct {
	Name    string   `koanf:"name" validate:"required"`
	Targets []string `koanf:"targets" validate:"min=1,dive,required"`
}

// Validate checks structural constraints and the master key shape. The master
// key check runs before anything listens: a gateway that silently accepts all
// traffic because the key is missing is worse than one that refuses to start.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Server.MasterKey == "" {
		return errors.New(`server.master_key is not set. Generate a secret and configure it, e.g. server.master_key: "sk-<random>"`)
	}
	if !strings.HasPrefix(c.Server.MasterKey, masterKeyPrefix) {
		return fmt.Errorf(`server.master_key must start with %q so clients can use it as an OpenAI-style API key`, masterKeyPrefix)
	}

	switch c.Auth.Storage {
	case TokenStorageTypeFile:
		if c.Auth.TokenFile == "" {
			return errors.New("auth.token_file is required for file token storage")
		}
	case TokenStorageTypeEnv:
		if c.Auth.TokenEnvVar == "" {
			return errors.New("auth.token_env_var is required for env token storage")
		}
	}

	return nil
}

// NewTokenSource builds the read-only credential source for the serving path.
func (c AuthConfig) NewTokenSource() (credential.Source, error) {
	switch c.Storage {
	case TokenStorageTypeEnv:
		return &credential.EnvSource{Var: c.TokenEnvVar}, nil
	case TokenStorageTypeFile:
		return &credential.FileSource{Path: c.TokenFile}, nil
	case TokenStorageTypeKeyring:
		return &credential.KeyringSource{Service: keyringService, User: keyringUser}, nil
	default:
		return nil, fmt.Errorf("unsupported token storage type %q", c.Storage)
	}
}

// NewTokenStore builds the writable credential store for auth login/logout.
// Env storage is rejected because environment variables cannot be written back.
func (c AuthConfig) NewTokenStore() (credential.Store, error) {
	source, err := c.NewTokenSource()
	if err != nil {
		return nil, err
	}

	store, ok := source.(credential.Store)
	if !ok {
		return nil, fmt.Errorf("token storage type %q is read-only", c.Storage)
	}
	return store, nil
}

// aliasTable converts the configured aliases into a resolution table.
func (c *Config) aliasTable() (*modelalias.Table, error) {
	aliases := make([]modelalias.Alias, 0, len(c.Models))
	for _, m := range c.Models {
		aliases = append(aliases, modelalias.Alias{Name: m.Name, Targets: m.Targets})
	}
	return modelalias.New(aliases)
}

// DefaultTokenEnvVar is used when env storage is selected without an explicit
// variable name. It matches what the agent CLI reads natively.
const DefaultTokenEnvVar = agentcli.TokenEnvVar
