package claudeagent

import (
	"strings"

	"github.com/florianilch/agentgate/internal/openaiadapter"
)

// BuildPrompt converts an OpenAI message sequence into the agent's prompt
// representation and a separate system prompt.
//
// System and developer messages travel through the dedicated system-prompt
// channel, never the conversational prompt; multiple system messages are
// concatenated in order. Remaining turns are rendered as Human:/Assistant:
// paragraphs. Roles this gateway does not model (tool, function) are skipped.
func BuildPrompt(messages []openaiadapter.ChatMessage) (prompt, systemPrompt string) {
	var systemParts []string
	var turns []string

	for _, message := range messages {
		content := string(message.Content)

		switch message.Role {
		case openaiadapter.RoleSystem, openaiadapter.RoleDeveloper:
			if content != "" {
				systemParts = append(systemParts, content)
			}
		case openaiadapter.RoleUser:
			turns = append(turns, "Human: "+content)
		case openaiadapter.RoleAssistant:
			turns = append(turns, "Assistant: "+content)
		}
	}

	return strings.Join(turns, "\n\n"), strings.Join(systemParts, "\n\n")
}
