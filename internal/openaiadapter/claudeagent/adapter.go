package claudeagent

import (
	"context"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/florianilch/agentgate/internal/agentcli"
	"github.com/florianilch/agentgate/internal/modelalias"
	"github.com/florianilch/agentgate/internal/openaiadapter"
)

// Querier is the upstream seam: one agent invocation per call, events until a
// terminal result. Satisfied by *agentcli.Client.
type Querier interface {
	Query(ctx context.Context, prompt string, opts agentcli.Options) (iter.Seq2[agentcli.Event, error], error)
}

// CompletionAdapter translates OpenAI chat completion requests into agent CLI
// queries. It carries no per-request state: the alias table is immutable and
// every request owns its own upstream subprocess, so concurrent use is safe.
type CompletionAdapter struct {
	aliases  *modelalias.Table
	upstream Querier
}

// Compile-time check against the generic adapter contract.
var _ openaiadapter.CreateChatCompletionAdapter = (*CompletionAdapter)(nil)

// New creates a CompletionAdapter over the given alias table and upstream.
func New(aliases *modelalias.Table, upstream Querier) *CompletionAdapter {
	return &CompletionAdapter{aliases: aliases, upstream: upstream}
}

// ProcessRequest handles a non-streaming completion.
func (a *CompletionAdapter) ProcessRequest(
	ctx context.Context,
	req openaiadapter.CreateChatCompletionRequest,
) (*openaiadapter.CreateChatCompletionResponse, error) {
	targets, err := a.aliases.Resolve(req.Model)
	if err != nil {
		return nil, openaiadapter.NewModelNotFoundError(req.Model)
	}

	prompt, systemPrompt := BuildPrompt(req.Messages)
	logIgnoredParameters(ctx, &req)

	var lastErr error
	for i, target := range targets {
		response, err := a.complete(ctx, prompt, buildOptions(req, target, systemPrompt))
		if err == nil {
			return response, nil
		}
		lastErr = err

		// One fallback step per remaining candidate, and only for transport
		// failures. Auth errors need out-of-band fixing regardless of model.
		if !agentcli.IsUnavailable(err) {
			break
		}
		if i+1 < len(targets) {
			slog.WarnContext(ctx, "upstream model unavailable, trying fallback",
				"alias", req.Model, "model", target, "fallback", targets[i+1], "error", err)
		}
	}

	return nil, toCompletionError(lastErr)
}

// complete runs one upstream query to completion and assembles the response.
func (a *CompletionAdapter) complete(
	ctx context.Context,
	prompt string,
	opts agentcli.Options,
) (*openaiadapter.CreateChatCompletionResponse, error) {
	events, err := a.upstream.Query(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}

	var content strings.Builder
	var stopReason anthropic.StopReason
	var usage *anthropic.Usage

	for event, eventErr := range events {
		if eventErr != nil {
			return nil, eventErr
		}

		switch event.Type {
		case agentcli.EventTypeAssistant:
			for _, text := range event.TextBlocks() {
				content.WriteString(text)
			}
			if event.Message != nil && event.Message.StopReason != "" {
				stopReason = event.Message.StopReason
			}
		case agentcli.EventTypeResult:
			// Result usage covers the whole query including any agentic turns.
			usage = event.Usage
		}
	}

	return &openaiadapter.CreateChatCompletionResponse{
		ID:      newCompletionID(),
		Object:  openaiadapter.ObjectChatCompletion,
		Created: time.Now().Unix(),
		Model:   opts.Model,
		Choices: []openaiadapter.Choice{{
			Index: 0,
			Message: openaiadapter.ResponseMessage{
				Role:    openaiadapter.RoleAssistant,
				Content: content.String(),
			},
			FinishReason: toFinishReason(stopReason),
		}},
		Usage: toCompletionUsage(usage),
	}, nil
}

// ProcessStreamingRequest handles a streaming completion. Each upstream text
// block is re-emitted as one chunk; the terminal chunk carries the finish
// reason and usage, and nothing follows it. If a candidate model fails before
// any chunk was emitted, the next alias target is tried; once output has
// started, failures surface as stream errors.
func (a *CompletionAdapter) ProcessStreamingRequest(
	ctx context.Context,
	req openaiadapter.CreateChatCompletionRequest,
) (iter.Seq2[*openaiadapter.CreateChatCompletionChunk, error], error) {
	targets, err := a.aliases.Resolve(req.Model)
	if err != nil {
		return nil, openaiadapter.NewModelNotFoundError(req.Model)
	}

	prompt, systemPrompt := BuildPrompt(req.Messages)
	logIgnoredParameters(ctx, &req)

	seq := func(yield func(*openaiadapter.CreateChatCompletionChunk, error) bool) {
		id := newCompletionID()
		created := time.Now().Unix()

		var lastErr error
		for i, target := range targets {
			done, err := a.streamCandidate(ctx, prompt, buildOptions(req, target, systemPrompt), id, created, yield)
			if done {
				return
			}
			lastErr = err
			if i+1 < len(targets) {
				slog.WarnContext(ctx, "upstream model unavailable, trying fallback",
					"alias", req.Model, "model", target, "fallback", targets[i+1], "error", err)
			}
		}

		yield(nil, toCompletionError(lastErr))
	}

	return seq, nil
}

// streamCandidate streams one candidate model. It returns done=true when the
// stream finished (successfully or with a surfaced error) and done=false with
// the failure when the candidate was unavailable before emitting any chunk,
// allowing the caller to fall back.
func (a *CompletionAdapter) streamCandidate(
	ctx context.Context,
	prompt string,
	opts agentcli.Options,
	id string,
	created int64,
	yield func(*openaiadapter.CreateChatCompletionChunk, error) bool,
) (done bool, failure error) {
	newChunk := func(delta openaiadapter.ChunkDelta) *openaiadapter.CreateChatCompletionChunk {
		return &openaiadapter.CreateChatCompletionChunk{
			ID:      id,
			Object:  openaiadapter.ObjectChatCompletionChunk,
			Created: created,
			Model:   opts.Model,
			Choices: []openaiadapter.ChunkChoice{{Delta: delta}},
		}
	}

	events, err := a.upstream.Query(ctx, prompt, opts)
	if err != nil {
		if agentcli.IsUnavailable(err) {
			return false, err
		}
		return true, yieldError(yield, err)
	}

	emitted := false
	var stopReason anthropic.StopReason
	var usage *anthropic.Usage

	for event, eventErr := range events {
		if eventErr != nil {
			if !emitted && agentcli.IsUnavailable(eventErr) {
				return false, eventErr
			}
			return true, yieldError(yield, eventErr)
		}

		switch event.Type {
		case agentcli.EventTypeAssistant:
			if event.Message != nil && event.Message.StopReason != "" {
				stopReason = event.Message.StopReason
			}
			for _, text := range event.TextBlocks() {
				if text == "" {
					continue
				}
				if !emitted {
					// OpenAI protocol: the first chunk announces the role.
					if !yield(newChunk(openaiadapter.ChunkDelta{Role: openaiadapter.RoleAssistant}), nil) {
						return true, nil
					}
					emitted = true
				}
				if !yield(newChunk(openaiadapter.ChunkDelta{Content: text}), nil) {
					return true, nil
				}
			}
		case agentcli.EventTypeResult:
			usage = event.Usage
		}
	}

	if !emitted {
		if !yield(newChunk(openaiadapter.ChunkDelta{Role: openaiadapter.RoleAssistant}), nil) {
			return true, nil
		}
	}

	finishReason := toFinishReason(stopReason)
	final := newChunk(openaiadapter.ChunkDelta{})
	final.Choices[0].FinishReason = &finishReason
	final.Usage = toCompletionUsage(usage)
	yield(final, nil)

	return true, nil
}

// yieldError surfaces a terminal error on the stream.
func yieldError(
	yield func(*openaiadapter.CreateChatCompletionChunk, error) bool,
	err error,
) error {
	yield(nil, toCompletionError(err))
	return nil
}

// logIgnoredParameters records which unsupported OpenAI parameters were
// dropped. Dropping is the documented contract, never an error; the log line
// makes the no-op observable.
func logIgnoredParameters(ctx context.Context, req *openaiadapter.CreateChatCompletionRequest) {
	if ignored := req.IgnoredParameters(); len(ignored) > 0 {
		slog.DebugContext(ctx, "ignoring unsupported request parameters", "params", ignored)
	}
}
