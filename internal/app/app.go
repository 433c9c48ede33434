// Package app wires configuration, credential storage, the upstream agent
// client, and the HTTP gateway into a runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/florianilch/agentgate/internal/agentcli"
	"github.com/florianilch/agentgate/internal/credential"
	"github.com/florianilch/agentgate/internal/gateway"
	"github.com/florianilch/agentgate/internal/openaiadapter/claudeagent"
)

// shutdownTimeout bounds how long in-flight requests may drain on shutdown.
const shutdownTimeout = 5 * time.Second

// App orchestrates the lifecycle of the gateway and its collaborators.
type App struct {
	gateway     *gateway.Gateway
	health      *Health
	credentials credential.Source
	listenAddr  string
}

// New assembles the application from validated configuration.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	aliases, err := cfg.aliasTable()
	if err != nil {
		return nil, fmt.Errorf("building model alias table: %w", err)
	}

	credentials, err := cfg.Auth.NewTokenSource()
	if err != nil {
		return nil, fmt.Errorf("building credential source: %w", err)
	}

	upstream := agentcli.NewClient(cfg.Agent.Binary, credentials)
	adapter := claudeagent.New(aliases, upstream)
	health := NewHealth()

	gw, err := gateway.New(gateway.Config{
		Adapter:         adapter,
		Aliases:         aliases,
		MasterKey:       cfg.Server.MasterKey,
		Readiness:       health,
		MaxRequestBytes: cfg.Server.MaxRequestBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway: %w", err)
	}

	return &App{
		gateway:     gw,
		health:      health,
		credentials: credentials,
		listenAddr:  cfg.Server.ListenAddr,
	}, nil
}

// Start starts all services and blocks until shutdown is triggered.
// Uses errgroup for runtime error monitoring and shutdown function collection
// for coordinated cleanup.
func (a *App) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	var shutdownFuncs []func(context.Context) error

	// A missing credential is not fatal at startup: the operator may still be
	// about to run auth login. Requests fail with authentication errors until
	// the token appears.
	if _, err := a.credentials.Token(gCtx); err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			slog.WarnContext(gCtx, "no upstream OAuth credential available yet, run 'agentgate auth login'")
		} else {
			slog.WarnContext(gCtx, "credential source check failed", "error", err)
		}
	}

	slog.InfoContext(gCtx, "starting gateway")
	gatewayErrCh, err := a.gateway.Start(gCtx, a.listenAddr)
	if err != nil {
		return fmt.Errorf("gateway startup failed: %w", err)
	}
	shutdownFuncs = append(shutdownFuncs, a.gateway.Shutdown)

	a.health.SetReady(true)
	defer a.health.SetReady(false)

	// Monitor runtime errors - errgroup cancels context on first error
	g.Go(func() error {
		select {
		case err := <-gatewayErrCh:
			if err != nil {
				slog.ErrorContext(gCtx, "gateway runtime error", "error", err)
				return fmt.Errorf("gateway: %w", err)
			}
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	runtimeErr := g.Wait()

	slog.InfoContext(gCtx, "shutting down services")

	// Shutdown phase: Stop all services
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}

	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "service shutdown failed", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("application stopped")
	return nil
}
