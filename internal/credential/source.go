// Package credential provides read-only access to the long-lived OAuth token
// that authorizes calls to the upstream agent. The token's lifecycle (issuance,
// renewal) is owned by out-of-band tooling; the serving path only ever reads.
//
// Sources are queried per call rather than cached in a process global, so a
// token rotated on disk or in the keyring is picked up without a restart.
package credential

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound indicates that no token is available from the source.
// The caller should surface it as an authentication-required condition.
var ErrNotFound = errors.New("oauth credential not found")

// Source yields the current OAuth bearer token.
type Source interface {
	Token(ctx context.Context) (string, error)
}

// Store is a Source that can also persist a token. The env-backed source is
// intentionally not a Store: environment variables are read-only at runtime.
type Store interface {
	Source
	// Write persists the token. An empty token clears the stored credential.
	Write(ctx context.Context, token string) error
}

// Static returns a fixed-token Source, mainly for tests.
func Static(token string) Source {
	return staticSource(token)
}

type staticSource string

func (s staticSource) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrNotFound
	}
	return string(s), nil
}

// EnvSource reads the token from an environment variable on every call.
type EnvSource struct {
	Var string
}

// Token returns the value of the configured environment variable.
func (s *EnvSource) Token(context.Context) (string, error) {
	token := strings.TrimSpace(os.Getenv(s.Var))
	if token == "" {
		return "", fmt.Errorf("%w: environment variable %s is empty", ErrNotFound, s.Var)
	}
	return token, nil
}

// FileSource reads the token from a file, typically on a volume mounted into
// the container so the credential survives process restarts.
type FileSource struct {
	Path string
}

// Token reads and trims the token file.
func (s *FileSource) Token(context.Context) (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s does not exist", ErrNotFound, s.Path)
		}
		return "", fmt.Errorf("reading token file %s: %w", s.Path, err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrNotFound, s.Path)
	}
	return token, nil
}

// Write persists the token with owner-only permissions. An empty token removes
// the file.
func (s *FileSource) Write(_ context.Context, token string) error {
	if token == "" {
		if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing token file %s: %w", s.Path, err)
		}
		return nil
	}

	if err := os.WriteFile(s.Path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing token file %s: %w", s.Path, err)
	}
	return nil
}
