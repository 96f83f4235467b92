package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-catalog-admin/auth"
	"github.com/jrsteele09/go-catalog-admin/catalog"
	"github.com/jrsteele09/go-catalog-admin/internal/config"
	"github.com/jrsteele09/go-catalog-admin/internal/metrics"
	"github.com/jrsteele09/go-catalog-admin/server"
	"github.com/jrsteele09/go-catalog-admin/sessions"
	"github.com/jrsteele09/go-catalog-admin/token"
	"github.com/jrsteele09/go-catalog-admin/token/refresh"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the admin console and keep the session refreshed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func run(ctx context.Context, cfg config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(cfg.GetAppName())

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Err(err).Msg("closing token storage")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	lifecycle := metrics.NewLifecycle(registry)

	client, err := catalog.New(cfg.GetAPIBaseURL(), store, catalog.WithTimeout(cfg.GetAPITimeout()))
	if err != nil {
		return err
	}

	sessionStore := sessions.NewStore()
	authService, err := auth.NewService(store, sessionStore, token.NewRemoteDecoder(ctx, cfg.GetJWKSURL()), client,
		auth.WithRequiredRole(sessions.RoleType(cfg.GetRequiredRole())),
		auth.WithMetrics(lifecycle),
	)
	if err != nil {
		return err
	}

	scheduler := refresh.NewScheduler(store, authService, client,
		refresh.WithMargin(cfg.GetRefreshMargin()),
		refresh.WithMinInterval(cfg.GetMinRefreshInterval()),
		refresh.WithMetrics(lifecycle),
	)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}
	defer scheduler.Stop()

	handler, err := server.New(cfg, server.Deps{
		Sessions: sessionStore,
		Auth:     authService,
		Catalog:  client,
		Refresh:  scheduler,
		Gatherer: registry,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.GetAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		done <- listenAndServe(httpServer)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		return shutdown(httpServer)
	case err := <-done:
		return err
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Console listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
