package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/t5g-dashboard/t5gmcp/internal/config"
	"github.com/t5g-dashboard/t5gmcp/internal/metrics"
	t5gserver "github.com/t5g-dashboard/t5gmcp/internal/server"
)

var (
	serveTransport string
	serveAddr      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server on stdio (default) or streamable HTTP.

With --transport http the MCP endpoint is served at endpoint_path (default
/mcp) and Prometheus metrics at metrics_path (default /metrics).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveTransport, "transport", "t", "", "Transport: stdio or http (default from config)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address for the http transport (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveTransport != "" {
		cfg.Transport = config.Transport(serveTransport)
	}
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	m := metrics.New()
	s, cleanup, err := t5gserver.New(cfg, logger, m)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Graceful shutdown on interrupt.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting t5gmcp",
		zap.String("version", t5gserver.Version),
		zap.String("dashboard", cfg.DashboardAPI),
		zap.String("transport", string(cfg.Transport)),
	)
	return t5gserver.Serve(ctx, s, cfg, m, logger)
}
