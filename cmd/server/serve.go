package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahsanfayaz52/hopperhelps/internal/handlers"
	"github.com/ahsanfayaz52/hopperhelps/internal/reconcile"
	"github.com/spf13/cobra"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != "" {
			cfg.Port = servePort
		}
		if cfg.JWTSecret == "" {
			logger.Warn(cmd.Context(), "JWT_SECRET is not set, using an insecure development secret")
			cfg.JWTSecret = "hopperhelps-dev-secret"
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		reconciler := reconcile.NewService(a.stale, a.sync, cfg.ReconcileSchedule, logger)
		if err := reconciler.Start(ctx); err != nil {
			return err
		}
		defer reconciler.Stop()

		r := handlers.NewRouter(handlers.Deps{
			Log:          logger,
			DB:           a.conn,
			Auth:         a.auth,
			Journal:      a.journal,
			Analyzer:     a.analyzer,
			Recommender:  a.recommender,
			SecureCookie: cfg.SecureCookie,
		})

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info(ctx, "starting server", "port", cfg.Port, "db", cfg.DBDriver)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info(context.Background(), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}
