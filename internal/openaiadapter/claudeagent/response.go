package claudeagent

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"

	"github.com/florianilch/agentgate/internal/openaiadapter"
)

// toFinishReason maps Anthropic stop reasons to OpenAI finish reasons.
// Tool-use stops cannot occur on this surface (the agent resolves tool calls
// internally and only final text reaches the gateway), so only text-bearing
// terminations are mapped.
func toFinishReason(stopReason anthropic.StopReason) string {
	switch stopReason {
	case anthropic.StopReasonMaxTokens:
		return openaiadapter.FinishReasonLength
	case anthropic.StopReasonRefusal:
		return openaiadapter.FinishReasonContentFilter
	default:
		// EndTurn, StopSequence, and anything unrecognized end as a normal stop.
		return openaiadapter.FinishReasonStop
	}
}

// toCompletionUsage copies the agent-reported token counts into the OpenAI
// usage shape. Counts are authoritative upstream values; nothing is estimated.
func toCompletionUsage(usage *anthropic.Usage) *openaiadapter.CompletionUsage {
	if usage == nil {
		return nil
	}
	return &openaiadapter.CompletionUsage{
		PromptTokens:     int(usage.InputTokens),
		CompletionTokens: int(usage.OutputTokens),
		TotalTokens:      int(usage.InputTokens + usage.OutputTokens),
	}
}

// newCompletionID generates an OpenAI-compatible response ID.
func newCompletionID() string {
	return "chatcmpl-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
