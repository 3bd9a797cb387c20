package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/t5g-dashboard/t5gmcp/internal/config"
	"github.com/t5g-dashboard/t5gmcp/internal/metrics"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// Serve runs s on the configured transport until ctx is cancelled or the
// transport fails.
func Serve(ctx context.Context, s *server.MCPServer, cfg config.Config, m *metrics.Metrics, logger *zap.Logger) error {
	switch cfg.Transport {
	case config.TransportHTTP:
		return serveHTTP(ctx, s, cfg, m, logger)
	case config.TransportStdio, "":
		stdio := server.NewStdioServer(s)
		stdio.SetErrorLogger(zap.NewStdLog(logger))
		logger.Info("serving MCP over stdio")
		err := stdio.Listen(ctx, os.Stdin, os.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

// Handler returns the HTTP handler for the streamable HTTP transport:
// the MCP endpoint plus, when configured, the metrics endpoint.
func Handler(s *server.MCPServer, cfg config.Config, m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(cfg.EndpointPath, server.NewStreamableHTTPServer(s,
		server.WithEndpointPath(cfg.EndpointPath),
	))
	if cfg.MetricsPath != "" {
		mux.Handle(cfg.MetricsPath, m.Handler())
	}
	return mux
}

func serveHTTP(ctx context.Context, s *server.MCPServer, cfg config.Config, m *metrics.Metrics, logger *zap.Logger) error {
	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           Handler(s, cfg, m),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(logger),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("serving MCP over HTTP",
			zap.String("addr", cfg.ListenAddr),
			zap.String("endpoint", cfg.EndpointPath),
			zap.String("metrics", cfg.MetricsPath),
		)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down HTTP server")
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
