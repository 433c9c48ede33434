package agentcli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/anthropics/anthropic-sdk-go"
)

// Event types emitted by the CLI's stream-json output.
const (
	EventTypeSystem    = "system"
	EventTypeAssistant = "assistant"
	EventTypeUser      = "user"
	EventTypeResult    = "result"
)

// Result subtypes.
const (
	ResultSubtypeSuccess = "success"
)

// Event is one unit of the CLI's stream-json output. Exactly one result event
// terminates a successful query; assistant events carry the model output as
// Anthropic API messages.
type Event struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`

	// Message is set on assistant and user events.
	Message *anthropic.Message `json:"message,omitempty"`

	// Result fields, set on the terminal event.
	Result       string           `json:"result,omitempty"`
	IsError      bool             `json:"is_error,omitempty"`
	Usage        *anthropic.Usage `json:"usage,omitempty"`
	NumTurns     int              `json:"num_turns,omitempty"`
	DurationMS   int64            `json:"duration_ms,omitempty"`
	TotalCostUSD float64          `json:"total_cost_usd,omitempty"`

	SessionID string `json:"session_id,omitempty"`
}

// TextBlocks returns the text content of an assistant event's message in
// block order. Tool use and other non-text blocks are skipped; the gateway's
// contract is text-only output.
func (e *Event) TextBlocks() []string {
	if e.Message == nil {
		return nil
	}

	var texts []string
	for _, block := range e.Message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			texts = append(texts, text.Text)
		}
	}
	return texts
}

// eventDecoder reads Events from a stream-json byte stream.
type eventDecoder struct {
	dec *json.Decoder
}

func newEventDecoder(r io.Reader) *eventDecoder {
	return &eventDecoder{dec: json.NewDecoder(r)}
}

// Next returns the next event, io.EOF at end of stream, or a wrapped decode
// error for malformed output.
func (d *eventDecoder) Next() (Event, error) {
	var event Event
	if err := d.dec.Decode(&event); err != nil {
		if err == io.EOF {
			return Event{}, io.EOF
		}
		return Event{}, fmt.Errorf("decoding agent event stream: %w", err)
	}
	return event, nil
}
