package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autotagger/internal/handlers"
	"autotagger/internal/indexer"
	"autotagger/internal/logging"
	"autotagger/internal/metrics"
	"autotagger/internal/middleware"
	"autotagger/internal/startup"

	"github.com/spf13/cobra"
)

const (
	collectInterval = 30 * time.Second
	shutdownTimeout = 30 * time.Second
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP control API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().String("listen", ":8080", "HTTP listen address")
	cmd.Flags().Bool("metrics", true, "expose Prometheus metrics on /metrics")
	_ = a.v.BindPFlag(startup.KeyListen, cmd.Flags().Lookup("listen"))
	_ = a.v.BindPFlag(startup.KeyMetricsEnabled, cmd.Flags().Lookup("metrics"))

	return cmd
}

func (a *app) serve(ctx context.Context) error {
	startTime := time.Now()
	cfg := a.cfg

	startup.PrintBanner()
	startup.LogConfig(cfg)
	startup.LogExiftoolInit(cfg.Exiftool)

	ext, closeExtractor := a.newExtractor()
	defer closeExtractor()
	startup.LogReadersReady(ext.ReaderNames())

	pipeline := indexer.NewPipeline(ext, indexer.Config{
		Workers:      cfg.Workers,
		DatabaseName: cfg.DatabaseName,
	})
	controller := indexer.NewController(pipeline)

	if cfg.MetricsEnabled {
		metrics.InitializeMetrics()
		metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
		collector := metrics.NewCollector(controller, collectInterval)
		collector.Start()
		defer collector.Stop()
	}

	h := handlers.New(controller, cfg.DatabaseName)
	router := h.Router(handlers.RouterConfig{MetricsEnabled: cfg.MetricsEnabled})
	startup.LogHTTPRoutes(router, cfg.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = cfg.LogHealthChecks

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           middleware.Logger(loggingConfig)(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	startup.LogServerStarted(startup.ServerConfig{
		Listen:          cfg.Listen,
		MetricsEnabled:  cfg.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		startup.LogShutdownInitiated("signal")
	}

	return shutdown(srv, controller)
}

func shutdown(srv *http.Server, controller *indexer.Controller) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Cancelling tagging run")
	if controller.Cancel() {
		if _, err := controller.Wait(ctx); err != nil {
			logging.Warn("Tagging run did not stop in time: %v", err)
		}
	}
	startup.LogShutdownStepComplete("Tagging run stopped")

	startup.LogShutdownComplete()
	return nil
}
