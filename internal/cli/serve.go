package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cookie-jar-solutions/honey"
	"github.com/cookie-jar-solutions/honey/internal/logging"
	httpAdapter "github.com/cookie-jar-solutions/honey/pkg/adapters/http"
	"github.com/cookie-jar-solutions/honey/pkg/adapters/mcp"
	"github.com/cookie-jar-solutions/honey/pkg/jar"
	"github.com/cookie-jar-solutions/honey/pkg/observability"
	"github.com/cookie-jar-solutions/honey/pkg/session"
)

// ServeOptions configure the network servers.
type ServeOptions struct {
	Port int

	// Sessions idle for longer than SessionTTL are dropped. Zero keeps them forever.
	SessionTTL time.Duration

	// Transport is "stdio" or "sse" for the MCP server.
	Transport string
}

const shutdownTimeout = 5 * time.Second

// serverLogger logs at info level even without --debug.
func serverLogger(debug bool) *slog.Logger {
	if debug {
		return logging.NewConsole(slog.LevelDebug)
	}
	return logging.NewConsole(slog.LevelInfo)
}

func newSessions(lib *honey.Library, opts Options, logger *slog.Logger) (*session.Manager, error) {
	p, err := ResolveProfile(opts)
	if err != nil {
		return nil, err
	}
	factory := func(ctx context.Context, sessionID string) (jar.Executor, error) {
		return lib.Executor(p)
	}
	return session.NewManager(factory, session.WithLogger(logger)), nil
}

// BuildHandler assembles the HTTP API with metrics and a session manager.
func BuildHandler(opts Options, logger *slog.Logger) (http.Handler, *session.Manager, error) {
	metrics := observability.NewMetrics()
	lib, err := OpenLibrary(opts, logger, honey.WithLifecycleHooks(metrics.Hooks()))
	if err != nil {
		return nil, nil, err
	}
	sessions, err := newSessions(lib, opts, logger)
	if err != nil {
		return nil, nil, err
	}

	handler, err := httpAdapter.NewHandler(lib.Store(), sessions,
		httpAdapter.WithMetrics(metrics.Handler()),
		httpAdapter.WithVersion(honey.Version),
		httpAdapter.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return handler, sessions, nil
}

// Serve runs the HTTP API until ctx is cancelled.
func Serve(ctx context.Context, opts Options, sopts ServeOptions) error {
	logger := serverLogger(opts.Debug)

	handler, sessions, err := BuildHandler(opts, logger)
	if err != nil {
		return err
	}
	if sopts.SessionTTL > 0 {
		go sessions.Janitor(ctx, sopts.SessionTTL/2, sopts.SessionTTL)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", sopts.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting honey server", "address", srv.Addr, "dir", opts.Dir)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Shutdown signal received")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("honey server stopped gracefully")
		return nil
	}
}

// ServeMCP runs the MCP server on the chosen transport until ctx is cancelled.
func ServeMCP(ctx context.Context, opts Options, sopts ServeOptions) error {
	// Stdout carries JSON-RPC on stdio, so logs must stay on stderr.
	logger := serverLogger(opts.Debug)

	lib, err := OpenLibrary(opts, logger)
	if err != nil {
		return err
	}
	sessions, err := newSessions(lib, opts, logger)
	if err != nil {
		return err
	}
	if sopts.SessionTTL > 0 {
		go sessions.Janitor(ctx, sopts.SessionTTL/2, sopts.SessionTTL)
	}

	srv, err := mcp.NewServer(ctx, lib.Store(), sessions,
		mcp.WithVersion(honey.Version),
		mcp.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	if err := srv.Watch(ctx); err != nil {
		logger.Warn("Prompt hot reload disabled", "err", err)
	}

	switch sopts.Transport {
	case "", "stdio":
		logger.Info("Starting honey MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting honey MCP server (SSE)", "port", sopts.Port)
		err := srv.ServeSSE(ctx, sopts.Port)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", sopts.Transport)
	}
}
