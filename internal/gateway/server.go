// Package gateway exposes the OpenAI-compatible HTTP surface: chat
// completions (buffered and SSE), the model list, health probes, and the
// master-key authentication that protects the upstream agent.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/florianilch/agentgate/internal/modelalias"
	"github.com/florianilch/agentgate/internal/observability/middleware"
	"github.com/florianilch/agentgate/internal/openaiadapter"
)

// defaultMaxRequestBytes caps chat completion request bodies.
const defaultMaxRequestBytes = 10 << 20 // 10 MiB

// ReadinessChecker reports whether the application is ready to serve traffic.
type ReadinessChecker interface {
	IsReady() bool
}

// Config carries the collaborators and settings for a Gateway.
type Config struct {
	// Adapter handles chat completion requests.
	Adapter openaiadapter.CreateChatCompletionAdapter

	// Aliases backs the /v1/models listing.
	Aliases *modelalias.Table

	// MasterKey authenticates inbound requests. Must be validated by the
	// caller before the gateway is constructed; the gateway only compares.
	MasterKey string

	// Readiness backs the /readyz probe.
	Readiness ReadinessChecker

	// MaxRequestBytes overrides the request body limit when positive.
	MaxRequestBytes int64
}

// Gateway is the HTTP server for the OpenAI-compatible surface.
type Gateway struct {
	server  *http.Server
	handler http.Handler
}

// New assembles the route table and middleware chain.
func New(cfg Config) (*Gateway, error) {
	if cfg.Adapter == nil {
		return nil, errors.New("adapter must not be nil")
	}
	if cfg.Aliases == nil {
		return nil, errors.New("alias table must not be nil")
	}
	if cfg.Readiness == nil {
		return nil, errors.New("readiness checker must not be nil")
	}
	if cfg.MasterKey == "" {
		return nil, errors.New("master key must not be empty")
	}

	maxBytes := cfg.MaxRequestBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxRequestBytes
	}

	authenticated := MasterKeyAuth(cfg.MasterKey)

	mux := http.NewServeMux()
	mux.Handle("POST /v1/chat/completions", authenticated(&CreateChatCompletionsHandler{
		Adapter: cfg.Adapter,
	}))
	mux.Handle("GET /v1/models", authenticated(modelsHandler(cfg.Aliases)))
	mux.Handle("GET /healthz", livenessHandler())
	mux.Handle("GET /readyz", readinessHandler(cfg.Readiness))

	handler := applyMiddlewares(mux,
		middleware.RequestIDGeneration,
		middleware.TraceContextExtraction,
		middleware.Logging(slog.Default()),
		middleware.RequestIDPropagation,
		Recovery,
		RequestSizeLimit(maxBytes),
	)

	return &Gateway{handler: handler}, nil
}

// Handler returns the fully wrapped HTTP handler, mainly for tests.
func (g *Gateway) Handler() http.Handler {
	return g.handler
}

// Start binds the listener and serves in the background. Binding errors are
// returned synchronously so startup failures abort before traffic; runtime
// errors arrive on the returned channel.
func (g *Gateway) Start(ctx context.Context, addr string) (<-chan error, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", addr, err)
	}

	g.server = &http.Server{
		Handler:           g.handler,
		ReadHeaderTimeout: 10 * time.Second,
		// WriteTimeout stays zero: SSE responses are open-ended and bounded
		// only by client disconnect or upstream completion.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if err := g.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.InfoContext(ctx, "gateway listening", "addr", listener.Addr().String())
	return errCh, nil
}

// Shutdown drains in-flight requests until ctx expires.
func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}
