package agentcli

import "strconv"

// Options mirror the subset of Claude Agent SDK options the gateway forwards.
// Anything the SDK does not define has no representation here; the adapter is
// responsible for dropping unsupported client parameters before this point.
type Options struct {
	// Model is the concrete upstream model identifier (never a public alias).
	Model string

	// SystemPrompt replaces the agent's default system prompt.
	SystemPrompt string

	// MaxTurns limits agentic turns; zero means the CLI default.
	MaxTurns int

	// AllowedTools / DisallowedTools are tool name allow/deny lists.
	AllowedTools    []string
	DisallowedTools []string

	// PermissionMode controls tool permission prompting (e.g. "acceptEdits").
	PermissionMode string

	// WorkDir is the subprocess working directory; empty inherits the gateway's.
	WorkDir string
}

// args renders the CLI argument list for a single non-interactive query.
// The prompt itself travels over stdin, never argv, so it cannot leak into
// process listings.
func (o Options) args() []string {
	args := []string{"--print", "--verbose", "--output-format", "stream-json"}

	if o.Model != "" {
		args = append(args, "--model", o.Model)
	}
	if o.SystemPrompt != "" {
		args = append(args, "--system-prompt", o.SystemPrompt)
	}
	if o.MaxTurns > 0 {
		args = append(args, "--max-turns", strconv.Itoa(o.MaxTurns))
	}
	for _, tool := range o.AllowedTools {
		args = append(args, "--allowed-tools", tool)
	}
	for _, tool := range o.DisallowedTools {
		args = append(args, "--disallowed-tools", tool)
	}
	if o.PermissionMode != "" {
		args = append(args, "--permission-mode", o.PermissionMode)
	}

	return args
}
