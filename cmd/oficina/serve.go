package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/oficina/internal/api"
	"github.com/erazemk/oficina/internal/client"
	"github.com/erazemk/oficina/internal/db"
	"github.com/erazemk/oficina/internal/metrics"
	"github.com/erazemk/oficina/internal/store"
	"github.com/erazemk/oficina/internal/web"
	"github.com/erazemk/oficina/internal/workflow"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the stock console and REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringP("addr", "a", ":8080", "listen address")
	_ = a.v.BindPFlag("http.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg

	database, err := db.Open(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return err
	}
	slog.Info("database ready", "path", cfg.DB.Path)

	tokenSecret, err := store.GetTokenSecret(ctx, database)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.New(reg)
		mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	threshold := cfg.Inventory.LowStockThreshold
	mux.Handle("/api/", api.NewRouter(database, tokenSecret, threshold))

	// The console drives its workflow against the local store unless a
	// remote API is configured.
	var collab workflow.Collaborator = &store.StockItems{DB: database}
	photos := database
	if cfg.Collaborator.URL != "" {
		collab = client.New(cfg.Collaborator.URL, cfg.Collaborator.Token, cfg.Collaborator.Timeout)
		photos = nil
		slog.Info("using remote stock backend", "url", cfg.Collaborator.URL)
	}

	webRouter, err := web.NewRouter(collab, web.Options{
		Workflow: workflow.Options{
			FeedbackDelay: cfg.Inventory.FeedbackDelay,
			CallTimeout:   cfg.Collaborator.Timeout,
			Metrics:       m,
		},
		LowStockThreshold: threshold,
		DB:                photos,
	})
	if err != nil {
		return err
	}
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.LoggingMiddleware(m)(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server started", "addr", cfg.HTTP.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped, closing database")
	return nil
}
