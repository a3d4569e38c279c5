package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ekaya-inc/intelhub/pkg/handlers"
	"github.com/ekaya-inc/intelhub/pkg/mcp"
	"github.com/ekaya-inc/intelhub/pkg/mcp/tools"
	"github.com/ekaya-inc/intelhub/pkg/middleware"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and MCP endpoint",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	if cfg.SampleMode {
		if err := a.store.SetSampleMode(ctx, true); err != nil {
			return err
		}
		logger.Info("Sample mode enabled, persistence suspended")
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting intelhub",
			zap.String("addr", srv.Addr),
			zap.String("base_url", cfg.BaseURL),
			zap.String("version", cfg.Version),
			zap.String("store", cfg.Store.Backend),
			zap.String("agent_provider", cfg.Agent.Provider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("Server stopped")
	return nil
}

// newRouter registers the API routes and the MCP endpoint.
func newRouter(a *app) http.Handler {
	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewDashboardHandler(a.store, logger).RegisterRoutes(mux)
	handlers.NewCompetitorHandler(a.store, logger).RegisterRoutes(mux)
	handlers.NewFindingHandler(a.store, logger).RegisterRoutes(mux)
	handlers.NewDiscoveryHandler(a.discovery, a.store, logger).RegisterRoutes(mux)
	handlers.NewReportHandler(a.reports, a.store, logger).RegisterRoutes(mux)

	mcpServer := mcp.NewServer(cfg.Version, &tools.ToolDeps{
		Store:     a.store,
		Discovery: a.discovery,
		Reports:   a.reports,
		Logger:    logger.Named("mcp"),
	}, logger)
	mux.Handle("/mcp", middleware.MCPRequestLogger(logger.Named("mcp"))(mcpServer.NewStreamableHTTPServer()))

	return middleware.Chain(mux,
		middleware.Recoverer(logger),
		middleware.RequestLogger(logger.Named("http")),
	)
}
