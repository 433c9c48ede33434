package gateway

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/florianilch/agentgate/internal/modelalias"
	"github.com/florianilch/agentgate/internal/openaiadapter"
)

const testMasterKey = "sk-test-master-key"

// fakeAdapter returns canned responses or errors for handler tests.
type fakeAdapter struct {
	response *openaiadapter.CreateChatCompletionResponse
	chunks   []*openaiadapter.CreateChatCompletionChunk
	err      error
}

func (f *fakeAdapter) ProcessRequest(
	ctx context.Context,
	req openaiadapter.CreateChatCompletionRequest,
) (*openaiadapter.CreateChatCompletionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeAdapter) ProcessStreamingRequest(
	ctx context.Context,
	req openaiadapter.CreateChatCompletionRequest,
) (iter.Seq2[*openaiadapter.CreateChatCompletionChunk, error], error) {
	if f.err != nil {
		return nil, f.err
	}
	return func(yield func(*openaiadapter.CreateChatCompletionChunk, error) bool) {
		for _, chunk := range f.chunks {
			if !yield(chunk, nil) {
				return
			}
		}
	}, nil
}

type alwaysReady struct{}

func (alwaysReady) IsReady() bool { return true }

type neverReady struct{}

func (neverReady) IsReady() bool { return false }

func newTestGateway(t *testing.T, adapter openaiadapter.CreateChatCompletionAdapter, ready ReadinessChecker) http.Handler {
	t.Helper()

	aliases, err := modelalias.New([]modelalias.Alias{
		{Name: "gpt-4o", Targets: []string{"claude-sonnet-4-5"}},
		{Name: "gpt-4o-mini", Targets: []string{"claude-haiku-4-5"}},
	})
	if err != nil {
		t.Fatalf("building alias table: %v", err)
	}

	gw, err := New(Config{
		Adapter:   adapter,
		Aliases:   aliases,
		MasterKey: testMasterKey,
		Readiness: ready,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return gw.Handler()
}

func completionRequest(t *testing.T, body string, key string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	return req
}

func TestChatCompletions(t *testing.T) {
	adapter := &fakeAdapter{
		response: &openaiadapter.CreateChatCompletionResponse{
			ID:     "chatcmpl-123",
			Object: openaiadapter.ObjectChatCompletion,
			Model:  "gpt-4o",
			Choices: []openaiadapter.Choice{{
				Message:      openaiadapter.ResponseMessage{Role: openaiadapter.RoleAssistant, Content: "hello"},
				FinishReason: openaiadapter.FinishReasonStop,
			}},
			Usage: &openaiadapter.CompletionUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
		},
	}
	handler := newTestGateway(t, adapter, alwaysReady{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, completionRequest(t,
		`{"model":"gpt-4o","messages":[{"role":"user","content":"hi"}]}`, testMasterKey))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}

	var resp openaiadapter.CreateChatCompletionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Choices[0].Message.Content != "hello" {
		t.Errorf("got content %q, want %q", resp.Choices[0].Message.Content, "hello")
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 5 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}
}

func TestChatCompletionsRequiresMasterKey(t *testing.T) {
	handler := newTestGateway(t, &fakeAdapter{}, alwaysReady{})

	tests := []struct {
		name string
		key  string
	}{
		{name: "missing key", key: ""},
		{name: "wrong key", key: "sk-wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, completionRequest(t,
				`{"model":"gpt-4o","messages":[{"role":"user","content":"hi"}]}`, tt.key))

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("got status %d, want 401", rec.Code)
			}

			var envelope openaiadapter.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("decoding error envelope: %v", err)
			}
			if envelope.Err.Type != openaiadapter.ErrorTypeAuthentication {
				t.Errorf("got error type %q, want authentication_error", envelope.Err.Type)
			}
		})
	}
}

func TestChatCompletionsUnknownModel(t *testing.T) {
	adapter := &fakeAdapter{err: openaiadapter.NewModelNotFoundError("gpt-5")}
	handler := newTestGateway(t, adapter, alwaysReady{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, completionRequest(t,
		`{"model":"gpt-5","messages":[{"role":"user","content":"hi"}]}`, testMasterKey))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}
}

func TestChatCompletionsEmptyMessages(t *testing.T) {
	handler := newTestGateway(t, &fakeAdapter{}, alwaysReady{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, completionRequest(t, `{"model":"gpt-4o","messages":[]}`, testMasterKey))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
}

func TestChatCompletionsInvalidBody(t *testing.T) {
	handler := newTestGateway(t, &fakeAdapter{}, alwaysReady{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, completionRequest(t, `{not json`, testMasterKey))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
}

func TestChatCompletionsStreaming(t *testing.T) {
	finish := openaiadapter.FinishReasonStop
	adapter := &fakeAdapter{
		chunks: []*openaiadapter.CreateChatCompletionChunk{
			{
				ID:      "chatcmpl-123",
				Object:  openaiadapter.ObjectChatCompletionChunk,
				Choices: []openaiadapter.ChunkChoice{{Delta: openaiadapter.ChunkDelta{Role: openaiadapter.RoleAssistant}}},
			},
			{
				ID:      "chatcmpl-123",
				Object:  openaiadapter.ObjectChatCompletionChunk,
				Choices: []openaiadapter.ChunkChoice{{Delta: openaiadapter.ChunkDelta{Content: "hello"}}},
			},
			{
				ID:      "chatcmpl-123",
				Object:  openaiadapter.ObjectChatCompletionChunk,
				Choices: []openaiadapter.ChunkChoice{{FinishReason: &finish}},
				Usage:   &openaiadapter.CompletionUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
			},
		},
	}
	handler := newTestGateway(t, adapter, alwaysReady{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, completionRequest(t,
		`{"model":"gpt-4o","messages":[{"role":"user","content":"hi"}],"stream":true}`, testMasterKey))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("got content type %q, want text/event-stream", ct)
	}

	var dataLines []string
	scanner := bufio.NewScanner(bytes.NewReader(rec.Body.Bytes()))
	for scanner.Scan() {
		line := scanner.Text()
		if after, ok := strings.CutPrefix(line, "data: "); ok {
			dataLines = append(dataLines, after)
		}
	}

	if len(dataLines) != 4 {
		t.Fatalf("got %d data lines, want 4 (3 chunks + [DONE]): %v", len(dataLines), dataLines)
	}
	if dataLines[len(dataLines)-1] != "[DONE]" {
		t.Errorf("stream must end with [DONE], got %q", dataLines[len(dataLines)-1])
	}

	var first openaiadapter.CreateChatCompletionChunk
	if err := json.Unmarshal([]byte(dataLines[0]), &first); err != nil {
		t.Fatalf("decoding first chunk: %v", err)
	}
	if first.Choices[0].Delta.Role != openaiadapter.RoleAssistant {
		t.Errorf("first chunk should announce the assistant role")
	}
}

func TestChatCompletionsStreamingError(t *testing.T) {
	adapter := &fakeAdapter{err: openaiadapter.NewError(openaiadapter.ErrorTypeAPI, "upstream unavailable")}
	handler := newTestGateway(t, adapter, alwaysReady{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, completionRequest(t,
		`{"model":"gpt-4o","messages":[{"role":"user","content":"hi"}],"stream":true}`, testMasterKey))

	// Errors before any chunk surface as a plain JSON error, not SSE.
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("got status %d, want 502", rec.Code)
	}
}

func TestModels(t *testing.T) {
	handler := newTestGateway(t, &fakeAdapter{}, alwaysReady{})

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	req.Header.Set("Authorization", "Bearer "+testMasterKey)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}

	var list modelList
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decoding model list: %v", err)
	}
	if list.Object != "list" || len(list.Data) != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list.Data[0].ID != "gpt-4o" || list.Data[1].ID != "gpt-4o-mini" {
		t.Errorf("aliases out of order: %+v", list.Data)
	}
}

func TestModelsRequiresMasterKey(t *testing.T) {
	handler := newTestGateway(t, &fakeAdapter{}, alwaysReady{})

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("liveness", func(t *testing.T) {
		handler := newTestGateway(t, &fakeAdapter{}, neverReady{})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("liveness got status %d, want 200", rec.Code)
		}
	})

	t.Run("ready", func(t *testing.T) {
		handler := newTestGateway(t, &fakeAdapter{}, alwaysReady{})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("readiness got status %d, want 200", rec.Code)
		}
	})

	t.Run("not ready", func(t *testing.T) {
		handler := newTestGateway(t, &fakeAdapter{}, neverReady{})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("readiness got status %d, want 503", rec.Code)
		}
	})
}

func TestRequestSizeLimit(t *testing.T) {
	aliases, err := modelalias.New([]modelalias.Alias{{Name: "gpt-4o", Targets: []string{"claude-sonnet-4-5"}}})
	if err != nil {
		t.Fatal(err)
	}
	gw, err := New(Config{
		Adapter:         &fakeAdapter{},
		Aliases:         aliases,
		MasterKey:       testMasterKey,
		Readiness:       alwaysReady{},
		MaxRequestBytes: 64,
	})
	if err != nil {
		t.Fatal(err)
	}

	body := `{"model":"gpt-4o","messages":[{"role":"user","content":"` + strings.Repeat("x", 256) + `"}]}`
	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, completionRequest(t, body, testMasterKey))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("got status %d, want 413", rec.Code)
	}
}

func TestNewRejectsMissingCollaborators(t *testing.T) {
	aliases, err := modelalias.New([]modelalias.Alias{{Name: "gpt-4o", Targets: []string{"claude-sonnet-4-5"}}})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "nil adapter", cfg: Config{Aliases: aliases, MasterKey: "sk-x", Readiness: alwaysReady{}}},
		{name: "nil aliases", cfg: Config{Adapter: &fakeAdapter{}, MasterKey: "sk-x", Readiness: alwaysReady{}}},
		{name: "nil readiness", cfg: Config{Adapter: &fakeAdapter{}, Aliases: aliases, MasterKey: "sk-x"}},
		{name: "empty master key", cfg: Config{Adapter: &fakeAdapter{}, Aliases: aliases, Readiness: alwaysReady{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("expected construction error")
			}
		})
	}
}
