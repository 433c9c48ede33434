package agentcli

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCLINotFound indicates the agent binary is not installed or not on PATH.
	ErrCLINotFound = errors.New("agent CLI not found")

	// ErrUnavailable indicates the agent subprocess could not be started or
	// failed in a way unrelated to authentication.
	ErrUnavailable = errors.New("agent backend unavailable")

	// ErrAuthRequired indicates the OAuth credential is missing or rejected.
	// Re-authentication is out-of-band; the serving path never retries this.
	ErrAuthRequired = errors.New("agent authentication required")
)

// IsUnavailable reports whether err represents a transport-level failure for
// which trying a fallback model is permitted.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrCLINotFound) || errors.Is(err, ErrUnavailable)
}

// ProcessError describes an agent subprocess that exited non-zero.
type ProcessError struct {
	ExitCode int
	Stderr   string
}

// Error implements the error interface.
func (e *ProcessError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("agent process exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("agent process exited with code %d: %s", e.ExitCode, e.Stderr)
}

// Unwrap classifies process failures as backend-unavailable.
func (e *ProcessError) Unwrap() error {
	return ErrUnavailable
}

// authFailureMarkers are substrings the CLI emits when the OAuth credential is
// missing, expired, or rejected.
var authFailureMarkers = []string{
	"authentication_error",
	"invalid api key",
	"oauth token",
	"please run /login",
	"not logged in",
	"credit balance",
}

// classifyFailure maps a subprocess failure to the package error taxonomy.
// Authentication problems surface through stderr or the result payload; they
// must be distinguishable from transport failures so callers can answer with
// a 401-equivalent instead of retrying a fallback model.
func classifyFailure(exitCode int, stderr string) error {
	lower := strings.ToLower(stderr)
	for _, marker := range authFailureMarkers {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("%w: %s", ErrAuthRequired, strings.TrimSpace(stderr))
		}
	}
	return &ProcessError{ExitCode: exitCode, Stderr: strings.TrimSpace(stderr)}
}

// classifyResultError maps an error reported inside a result event.
func classifyResultError(message string) error {
	lower := strings.ToLower(message)
	for _, marker := range authFailureMarkers {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("%w: %s", ErrAuthRequired, message)
		}
	}
	return fmt.Errorf("%w: %s", ErrUnavailable, message)
}
