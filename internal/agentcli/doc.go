// Package agentcli is a thin client for the Claude Agent CLI, the subprocess
// transport used by the Claude Agent SDK. Each Query spawns one CLI process,
// writes the prompt to its stdin, and consumes the newline-delimited JSON
// event stream from its stdout.
//
// Assistant events embed full Anthropic API message objects; they are decoded
// with the anthropic-sdk-go types rather than hand-rolled structs so content
// blocks, stop reasons, and usage stay aligned with the upstream wire format.
//
// The package deliberately adds nothing on top of the CLI's own semantics:
// no retries, no timeouts, no token refresh. Cancelling the Query context
// terminates the subprocess.
package agentcli
