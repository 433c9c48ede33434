package agentcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/florianilch/agentgate/internal/credential"
)

// TokenEnvVar is the environment variable the CLI reads its OAuth token from.
const TokenEnvVar = "CLAUDE_CODE_OAUTH_TOKEN"

// DefaultBinary is the agent CLI executable name resolved via PATH.
const DefaultBinary = "claude"

// stderrLimit caps captured stderr so a chatty subprocess cannot balloon memory.
const stderrLimit = 64 * 1024

// Client spawns agent CLI subprocesses. It is immutable after construction and
// safe for concurrent use; every Query owns its own subprocess.
type Client struct {
	binary      string
	credentials credential.Source
}

// NewClient creates a client for the given binary name or path. The credential
// source is consulted on every Query so token rotation needs no restart.
func NewClient(binary string, credentials credential.Source) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Client{binary: binary, credentials: credentials}
}

// Query runs one non-interactive agent invocation and returns its event
// stream. The returned iterator is single-use. Stopping iteration early or
// cancelling ctx terminates the subprocess; the final yielded error (if any)
// classifies the failure per the package error taxonomy.
func (c *Client) Query(ctx context.Context, prompt string, opts Options) (iter.Seq2[Event, error], error) {
	token, err := c.credentials.Token(ctx)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrAuthRequired, err)
		}
		return nil, fmt.Errorf("reading agent credential: %w", err)
	}

	path, err := exec.LookPath(c.binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not installed or not on PATH", ErrCLINotFound, c.binary)
	}

	cmd := exec.CommandContext(ctx, path, opts.args()...)
	cmd.Stdin = strings.NewReader(prompt)
	cmd.Env = append(os.Environ(), TokenEnvVar+"="+token)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}

	stderr := &cappedBuffer{limit: stderrLimit}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: creating stdout pipe: %v", ErrUnavailable, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: starting agent process: %v", ErrUnavailable, err)
	}

	// Wait must run exactly once regardless of how iteration ends.
	var waitOnce sync.Once
	var waitErr error
	wait := func() error {
		waitOnce.Do(func() { waitErr = cmd.Wait() })
		return waitErr
	}

	seq := func(yield func(Event, error) bool) {
		defer func() {
			// Early break or panic: make sure the subprocess dies and is reaped.
			_ = cmd.Process.Kill()
			_ = wait()
		}()

		decoder := newEventDecoder(stdout)
		for {
			event, err := decoder.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				yield(Event{}, err)
				return
			}

			if event.Type == EventTypeResult && event.IsError {
				message := event.Result
				if message == "" {
					message = "agent reported an unspecified error (" + event.Subtype + ")"
				}
				yield(Event{}, classifyResultError(message))
				return
			}

			if !yield(event, nil) {
				return
			}
		}

		if err := wait(); err != nil {
			if ctx.Err() != nil {
				yield(Event{}, ctx.Err())
				return
			}
			exitCode := -1
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				exitCode = exitErr.ExitCode()
			}
			yield(Event{}, classifyFailure(exitCode, stderr.String()))
		}
	}

	return seq, nil
}

// cappedBuffer collects writes up to a fixed limit and discards the rest.
type cappedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if remaining := b.limit - b.buf.Len(); remaining > 0 {
		if len(p) > remaining {
			b.buf.Write(p[:remaining])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}
