package claudeagent

import (
	"testing"

	"github.com/florianilch/agentgate/internal/openaiadapter"
)

func msg(role, content string) openaiadapter.ChatMessage {
	return openaiadapter.ChatMessage{Role: role, Content: openaiadapter.MessageText(content)}
}

func TestBuildPromptJoinsTurns(t *testing.T) {
	prompt, system := BuildPrompt([]openaiadapter.ChatMessage{
		msg("user", "hi"),
		msg("assistant", "hello"),
		msg("user", "how are you?"),
	})

	want := "Human: hi\n\nAssistant: hello\n\nHuman: how are you?"
	if prompt != want {
		t.Errorf("prompt = %q, want %q", prompt, want)
	}
	if system != "" {
		t.Errorf("system = %q, want empty", system)
	}
}

func TestBuildPromptHoistsSystemMessage(t *testing.T) {
	prompt, system := BuildPrompt([]openaiadapter.ChatMessage{
		msg("system", "You are a pirate."),
		msg("user", "ahoy"),
	})

	if system != "You are a pirate." {
		t.Errorf("system = %q", system)
	}
	if prompt != "Human: ahoy" {
		t.Errorf("prompt = %q", prompt)
	}
}

func TestBuildPromptConcatenatesMultipleSystemMessages(t *testing.T) {
	_, system := BuildPrompt([]openaiadapter.ChatMessage{
		msg("system", "First directive."),
		msg("user", "hi"),
		msg("system", "Second directive."),
	})

	if system != "First directive.\n\nSecond directive." {
		t.Errorf("system = %q, want in-order concatenation", system)
	}
}

func TestBuildPromptTreatsDeveloperAsSystem(t *testing.T) {
	_, system := BuildPrompt([]openaiadapter.ChatMessage{
		msg("developer", "Use snake_case."),
		msg("user", "write code"),
	})

	if system != "Use snake_case." {
		t.Errorf("system = %q", system)
	}
}

func TestBuildPromptSkipsEmptySystemContent(t *testing.T) {
	_, system := BuildPrompt([]openaiadapter.ChatMessage{
		msg("system", ""),
		msg("user", "hi"),
	})

	if system != "" {
		t.Errorf("system = %q, want empty", system)
	}
}

func TestBuildPromptEmptyInput(t *testing.T) {
	prompt, system := BuildPrompt(nil)
	if prompt != "" || system != "" {
		t.Errorf("BuildPrompt(nil) = %q, %q", prompt, system)
	}
}
