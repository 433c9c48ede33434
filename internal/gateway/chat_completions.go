package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/florianilch/agentgate/internal/openaiadapter"
)

// CreateChatCompletionsHandler handles OpenAI-compatible chat completion requests.
type CreateChatCompletionsHandler struct {
	Adapter openaiadapter.CreateChatCompletionAdapter
}

// Compile-time check to ensure CreateChatCompletionsHandler implements http.Handler
var _ http.Handler = (*CreateChatCompletionsHandler)(nil)

// ServeHTTP implements http.Handler for streaming or non-streaming requests.
func (h *CreateChatCompletionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req openaiadapter.CreateChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			slog.WarnContext(ctx, "request exceeds size limit", "limit_bytes", maxBytesErr.Limit)
			writeJSON(ctx, w, openaiadapter.NewError(
				openaiadapter.ErrorTypeInvalidRequest,
				http.StatusText(http.StatusRequestEntityTooLarge),
			), http.StatusRequestEntityTooLarge)
			return
		}
		slog.ErrorContext(ctx, "failed to decode request", "error", err)
		writeJSONOpenAIError(ctx, w, openaiadapter.NewError(
			openaiadapter.ErrorTypeInvalidRequest,
			"Invalid request body: "+err.Error(),
		))
		return
	}

	if len(req.Messages) == 0 {
		writeJSONOpenAIError(ctx, w, openaiadapter.NewError(
			openaiadapter.ErrorTypeInvalidRequest,
			"messages must not be empty",
		))
		return
	}

	if req.Stream != nil && *req.Stream {
		h.streamResponse(ctx, w, req)
	} else {
		h.writeResponse(ctx, w, req)
	}
}

// writeResponse handles non-streaming chat completion requests.
func (h *CreateChatCompletionsHandler) writeResponse(
	ctx context.Context,
	w http.ResponseWriter,
	req openaiadapter.CreateChatCompletionRequest,
) {
	if ctx.Err() != nil {
		return
	}
	response, err := h.Adapter.ProcessRequest(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "request failed", "error", err)

		var errResp *openaiadapter.ErrorResponse
		if errors.As(err, &errResp) {
			writeJSONOpenAIError(ctx, w, errResp)
			return
		}

		writeJSONOpenAIError(ctx, w, openaiadapter.NewError(
			openaiadapter.ErrorTypeAPI,
			http.StatusText(http.StatusInternalServerError),
		))
		return
	}

	writeJSON(ctx, w, response, http.StatusOK)
}

// streamResponse streams chat completion chunks using SSE.
func (h *CreateChatCompletionsHandler) streamResponse(
	ctx context.Context,
	w http.ResponseWriter,
	req openaiadapter.CreateChatCompletionRequest,
) {
	if ctx.Err() != nil {
		return
	}
	stream, err := h.Adapter.ProcessStreamingRequest(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "streaming request failed", "error", err)

		var errResp *openaiadapter.ErrorResponse
		if errors.As(err, &errResp) {
			writeJSONOpenAIError(ctx, w, errResp)
			return
		}

		writeJSONOpenAIError(ctx, w, openaiadapter.NewError(
			openaiadapter.ErrorTypeAPI,
			http.StatusText(http.StatusInternalServerError),
		))
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		slog.ErrorContext(ctx, "SSE not supported", "error", err)
		writeJSONOpenAIError(ctx, w, openaiadapter.NewError(
			openaiadapter.ErrorTypeAPI,
			http.StatusText(http.StatusInternalServerError),
		))
		return
	}

	for chunk, err := range stream {
		// Check for client disconnect before processing the chunk; breaking
		// out of the iterator propagates cancellation to the upstream call.
		if ctx.Err() != nil {
			slog.DebugContext(ctx, "client disconnected during stream")
			return
		}

		if err != nil {
			slog.ErrorContext(ctx, "stream error", "error", err)

			var errResp *openaiadapter.ErrorResponse
			if !errors.As(err, &errResp) {
				// Wrap unexpected errors for client visibility.
				errResp = openaiadapter.NewError(openaiadapter.ErrorTypeAPI, err.Error())
			}

			// OpenAI SDK clients recognize the {"error":{...}} event and stop
			// reading immediately.
			if writeErr := sse.WriteEvent("error"); writeErr != nil {
				slog.ErrorContext(ctx, "failed to write error event type", "error", writeErr)
				return
			}
			if writeErr := sse.WriteData(errResp); writeErr != nil {
				slog.ErrorContext(ctx, "failed to write error", "error", writeErr)
			}
			return
		}

		if err := sse.WriteData(chunk); err != nil {
			slog.ErrorContext(ctx, "failed to write chunk", "error", err)
			return
		}
	}

	// OpenAI streaming protocol requires the [DONE] marker.
	if err := sse.WriteRaw("[DONE]"); err != nil {
		slog.ErrorContext(ctx, "failed to write stream termination marker", "error", err)
	}
}
