// Package claudeagent adapts OpenAI chat completion requests to the Claude
// Agent CLI transport, enabling OpenAI SDK clients to talk to a locally
// authenticated agent without code changes.
//
// The adapter handles:
//
//   - Message translation: system and developer messages are hoisted to the
//     agent's dedicated system-prompt option (concatenated in order when a
//     request carries more than one); user and assistant turns are joined into
//     the Human:/Assistant: prompt representation the agent expects.
//
//   - Parameter contract: only agent-defined options (system prompt, turn
//     limit, tool allow/deny lists, permission mode, working directory) reach
//     upstream. OpenAI sampling and tooling parameters are accepted and
//     silently dropped; the drop set is exposed for auditing and logged.
//
//   - Alias fallback: a multi-target alias retries the next target exactly once
//     per candidate when the previous one is unavailable. Authentication
//     failures never fall back.
//
//   - Streaming: each upstream text block becomes one chunk. Granularity is
//     whatever the agent emits; text is never re-split locally. The terminal
//     chunk carries the finish reason and upstream-reported usage.
package claudeagent
