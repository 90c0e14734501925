package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/youruser/pledgeapp/internal/api"
	"github.com/youruser/pledgeapp/internal/app"
	"github.com/youruser/pledgeapp/internal/config"
	"github.com/youruser/pledgeapp/internal/logging"
	"github.com/youruser/pledgeapp/internal/media"
	"github.com/youruser/pledgeapp/internal/wizard"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("pledge", "error", false, nil).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New("pledge", cfg.LogLevel, cfg.LogJSON, nil)
	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger hclog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close store", "error", err)
		}
	}()
	logger.Info("templates loaded", "count", len(a.Registry.ListTemplates()))

	sessions := wizard.NewStore(media.NewRefs(), cfg.SessionTTL)
	defer sessions.Close()
	go sweep(ctx, sessions, cfg.SessionTTL, logger)

	if cfg.LogLevel != "debug" && cfg.LogLevel != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithWriter(logger.StandardWriter(&hclog.StandardLoggerOptions{InferLevels: true})))
	r.MaxMultipartMemory = cfg.MaxUploadBytes

	api.NewHandler(api.Deps{
		Registry:       a.Registry,
		Sessions:       sessions,
		Renderer:       a.Renderer,
		Exporter:       a.Exporter,
		Submissions:    a.Submissions,
		Logger:         logger,
		PreviewWidth:   cfg.PreviewWidth,
		MaxUploadBytes: cfg.MaxUploadBytes,
		ShareURL:       cfg.ShareURL,
		ShareTitle:     cfg.ShareTitle,
		ShareText:      cfg.ShareText,
		AdminToken:     cfg.AdminToken,
	}).RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", "http://localhost:"+cfg.Port)
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
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sweep expires idle wizard sessions until ctx ends.
func sweep(ctx context.Context, sessions *wizard.Store, ttl time.Duration, logger hclog.Logger) {
	if ttl <= 0 {
		return
	}
	t := time.NewTicker(max(ttl/4, time.Minute))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := sessions.Sweep(); n > 0 {
				logger.Debug("expired sessions", "count", n)
			}
		}
	}
}
