package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/florianilch/agentgate/internal/agentcli"
	"github.com/florianilch/agentgate/internal/app"
)

// defaultConfigPath is loaded when present; an explicitly passed path must exist.
const defaultConfigPath = "agentgate.yaml"

// envPrefix scopes environment overrides. Levels are separated with a double
// underscore so key names may themselves contain single underscores, e.g.
// AGENTGATE_SERVER__MASTER_KEY maps to server.master_key.
const envPrefix = "AGENTGATE_"

func configDefaults() map[string]any {
	return map[string]any{
		"server.listen_addr":       "127.0.0.1:4000",
		"server.max_request_bytes": 0,
		"auth.storage":             string(app.TokenStorageTypeKeyring),
		"auth.token_env_var":       app.DefaultTokenEnvVar,
		"agent.binary":             agentcli.DefaultBinary,
	}
}

// loadConfig merges defaults, the YAML config file, and AGENTGATE_* environment
// variables, in ascending precedence. Validation happens where the config is
// used: app.New for serving, the token store constructors for auth commands.
// Auth login must work before a master key has been configured.
func loadConfig(path string, environ func() []string) (app.Config, error) {
	// Populate the process environment from a local .env file if one exists.
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(configDefaults(), "."), nil); err != nil {
		return app.Config{}, fmt.Errorf("loading defaults: %w", err)
	}

	// The default path is optional; an explicitly configured one is not.
	_, statErr := os.Stat(path)
	if statErr == nil || path != defaultConfigPath {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return app.Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix:      envPrefix,
		EnvironFunc: environ,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.TrimPrefix(key, envPrefix)
			key = strings.ReplaceAll(strings.ToLower(key), "__", ".")
			return key, value
		},
	}), nil)
	if err != nil {
		return app.Config{}, fmt.Errorf("loading environment overrides: %w", err)
	}

	var cfg app.Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return app.Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}
