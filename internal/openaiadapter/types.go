package openaiadapter

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Message roles accepted on the chat completions endpoint.
const (
	RoleSystem    = "system"
	RoleDeveloper = "developer"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Finish reasons reported on completion responses and terminal stream chunks.
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonContentFilter = "content_filter"
)

// ChatMessage is one turn of an OpenAI-style conversation.
//
// Content is flattened to text at decode time: clients may send either a plain
// string or an array of content parts. Non-text parts (images, audio) are
// dropped, matching the documented unsupported-parameter contract of the
// upstream agent.
type ChatMessage struct {
	Role    string      `json:"role"`
	Content MessageText `json:"content"`
}

// MessageText is a string that also decodes from OpenAI's content-part arrays.
type MessageText string

// UnmarshalJSON accepts both `"content": "text"` and
// `"content": [{"type":"text","text":"..."}, ...]`, concatenating text parts.
func (m *MessageText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = MessageText(s)
		return nil
	}

	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("content must be a string or an array of content parts: %w", err)
	}

	var b strings.Builder
	for _, part := range parts {
		if part.Type == "text" {
			b.WriteString(part.Text)
		}
	}
	*m = MessageText(b.String())
	return nil
}

// MarshalJSON always emits the flattened string form.
func (m MessageText) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(m))
}

// CreateChatCompletionRequest is the body of POST /v1/chat/completions.
//
// The struct is deliberately a fixed set of named fields rather than an open
// parameter bag: fields in the "ignored" block are decoded so their presence
// can be audited and logged, but they are never forwarded upstream because the
// agent transport does not support them. See IgnoredParameters.
type CreateChatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   *bool         `json:"stream,omitempty"`

	// Agent options honored by the upstream transport.
	MaxTurns         *int     `json:"max_turns,omitempty"`
	AllowedTools     []string `json:"allowed_tools,omitempty"`
	DisallowedTools  []string `json:"disallowed_tools,omitempty"`
	PermissionMode   *string  `json:"permission_mode,omitempty"`
	WorkingDirectory *string  `json:"working_directory,omitempty"`

	// OpenAI sampling and tooling parameters accepted for compatibility and
	// silently ignored. Raw JSON is kept for the unstructured ones so clients
	// never receive decode errors for shapes we do not interpret.
	Temperature      *float64        `json:"temperature,omitempty"`
	TopP             *float64        `json:"top_p,omitempty"`
	MaxTokens        *int            `json:"max_tokens,omitempty"`
	N                *int            `json:"n,omitempty"`
	Seed             *int            `json:"seed,omitempty"`
	PresencePenalty  *float64        `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64        `json:"frequency_penalty,omitempty"`
	Stop             json.RawMessage `json:"stop,omitempty"`
	Tools            json.RawMessage `json:"tools,omitempty"`
	ToolChoice       json.RawMessage `json:"tool_choice,omitempty"`
	ResponseFormat   json.RawMessage `json:"response_format,omitempty"`
	LogitBias        json.RawMessage `json:"logit_bias,omitempty"`
	User             *string         `json:"user,omitempty"`
}

// IgnoredParameters returns the names of unsupported OpenAI parameters present
// on the request. The list exists so the drop contract is observable: handlers
// log it, tests assert against it, and nothing in it ever reaches upstream.
func (r *CreateChatCompletionRequest) IgnoredParameters() []string {
	var ignored []string
	add := func(name string, present bool) {
		if present {
			ignored = append(ignored, name)
		}
	}

	add("temperature", r.Temperature != nil)
	add("top_p", r.TopP != nil)
	add("max_tokens", r.MaxTokens != nil)
	add("n", r.N != nil)
	add("seed", r.Seed != nil)
	add("presence_penalty", r.PresencePenalty != nil)
	add("frequency_penalty", r.FrequencyPenalty != nil)
	add("stop", len(r.Stop) > 0)
	add("tools", len(r.Tools) > 0)
	add("tool_choice", len(r.ToolChoice) > 0)
	add("response_format", len(r.ResponseFormat) > 0)
	add("logit_bias", len(r.LogitBias) > 0)

	return ignored
}

// CompletionUsage carries token counts reported by the upstream agent.
// Values are authoritative upstream measurements, never local estimates.
type CompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ResponseMessage is the assistant message of a completion choice.
type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Choice is one completion alternative. The upstream agent produces exactly one.
type Choice struct {
	Index        int             `json:"index"`
	Message      ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

// CreateChatCompletionResponse is the non-streaming response body.
type CreateChatCompletionResponse struct {
	ID      string           `json:"id"`
	Object  string           `json:"object"`
	Created int64            `json:"created"`
	Model   string           `json:"model"`
	Choices []Choice         `json:"choices"`
	Usage   *CompletionUsage `json:"usage,omitempty"`
}

// ChunkDelta is the incremental payload of a streaming chunk.
type ChunkDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// ChunkChoice is one choice of a streaming chunk.
type ChunkChoice struct {
	Index        int        `json:"index"`
	Delta        ChunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

// CreateChatCompletionChunk is one server-sent event of a streaming response.
// The terminal chunk carries a finish reason and usage; no chunk follows it.
type CreateChatCompletionChunk struct {
	ID      string           `json:"id"`
	Object  string           `json:"object"`
	Created int64            `json:"created"`
	Model   string           `json:"model"`
	Choices []ChunkChoice    `json:"choices"`
	Usage   *CompletionUsage `json:"usage,omitempty"`
}

// Object type discriminators used on responses and chunks.
const (
	ObjectChatCompletion      = "chat.completion"
	ObjectChatCompletionChunk = "chat.completion.chunk"
)
