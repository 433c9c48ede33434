package openaiadapter

import (
	"context"
	"iter"
)

// Adapter defines the contract for transforming client requests to upstream calls.
//
// Type parameters allow the interface to express transformation contracts for
// different request/response shapes while maintaining compile-time type safety.
//
// Type parameters:
//   - TRequest:  Client-specific request structure
//   - TResponse: Client-specific response structure
//   - TChunk:    Client-specific streaming chunk protocol
type Adapter[TRequest, TResponse, TChunk any] interface {
	// ProcessRequest transforms the client request, calls the upstream, and
	// returns the transformed response. Implementations must be stateless so
	// concurrent requests never share mutable state.
	ProcessRequest(ctx context.Context, clientReq TRequest) (*TResponse, error)

	// ProcessStreamingRequest transforms the client request, calls the upstream
	// streaming API, and returns an iterator of transformed chunks. Cancelling
	// ctx must cancel the upstream call; implementations must not keep
	// consuming upstream output after the caller stops iterating.
	ProcessStreamingRequest(ctx context.Context, clientReq TRequest) (iter.Seq2[*TChunk, error], error)
}

// CreateChatCompletionAdapter is the concrete adapter interface for the
// OpenAI-compatible chat completion operation.
type CreateChatCompletionAdapter = Adapter[
	CreateChatCompletionRequest,
	CreateChatCompletionResponse,
	CreateChatCompletionChunk,
]
