package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringSource stores the token in the operating system keyring.
type KeyringSource struct {
	Service string
	User    string
}

// Token fetches the token from the keyring.
func (s *KeyringSource) Token(context.Context) (string, error) {
	token, err := keyring.Get(s.Service, s.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w: no keyring entry for %s/%s", ErrNotFound, s.Service, s.User)
		}
		return "", fmt.Errorf("reading keyring entry %s/%s: %w", s.Service, s.User, err)
	}
	if token == "" {
		return "", fmt.Errorf("%w: keyring entry %s/%s is empty", ErrNotFound, s.Service, s.User)
	}
	return token, nil
}

// Write persists the token to the keyring. An empty token deletes the entry.
func (s *KeyringSource) Write(_ context.Context, token string) error {
	if token == "" {
		if err := keyring.Delete(s.Service, s.User); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("deleting keyring entry %s/%s: %w", s.Service, s.User, err)
		}
		return nil
	}

	if err := keyring.Set(s.Service, s.User, token); err != nil {
		return fmt.Errorf("writing keyring entry %s/%s: %w", s.Service, s.User, err)
	}
	return nil
}
