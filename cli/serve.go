package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nijaru/yt-transcript/config"
	"github.com/nijaru/yt-transcript/db"
	"github.com/nijaru/yt-transcript/handlers"
	"github.com/nijaru/yt-transcript/middleware"
	"github.com/nijaru/yt-transcript/storage"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the transcript HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("port", "", "Listen port (overrides SERVER_PORT)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, client, err := setup(cmd, true)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.ServerPort = port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := handlers.Options{
		DefaultLanguages: cfg.DefaultLanguages,
		Timeout:          cfg.RequestTimeout,
		Logger:           log,
	}

	if cfg.CacheEnabled {
		store, err := db.Open(cfg.DBPath, cfg.CacheTTL)
		if err != nil {
			return errors.Wrap(err, "open transcript cache")
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.WithError(err).Error("Failed to close database")
			}
		}()
		if n, err := store.Purge(ctx); err != nil {
			log.WithError(err).Warn("Failed to purge expired transcripts")
		} else if n > 0 {
			log.WithField("purged", n).Info("Purged expired transcripts")
		}
		opts.Cache = store
	}

	if cfg.Spaces.Enabled {
		archive, err := storage.NewSpacesClient(ctx, cfg.Spaces)
		if err != nil {
			return errors.Wrap(err, "create transcript archive")
		}
		opts.Archive = archive
	}

	h := handlers.New(client, opts)
	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateLimitInterval, cfg.RateLimitBurst)

	server := &http.Server{
		Addr: ":" + cfg.ServerPort,
		Handler: middleware.Chain(h.Routes(),
			middleware.RequestID(),
			middleware.Logging(log),
			middleware.Recovery(log),
			limiter.Middleware,
		),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return listenAndServe(ctx, server, cfg, log)
}

// listenAndServe runs server until ctx is cancelled, then shuts it down
// within cfg.ShutdownTimeout.
func listenAndServe(ctx context.Context, server *http.Server, cfg *config.Config, log *logrus.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":       cfg.ServerPort,
			"delay":      cfg.RequestDelay(),
			"cache":      cfg.CacheEnabled,
			"archive":    cfg.Spaces.Enabled,
			"rate_limit": cfg.RateLimit,
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return errors.Wrapf(err, "listen on :%s", cfg.ServerPort)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down the server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server shutdown")
	}
	log.Info("Server stopped")
	return nil
}
