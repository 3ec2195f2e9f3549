package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/runeberget/krets/internal/bucket"
	"github.com/runeberget/krets/internal/config"
	"github.com/runeberget/krets/internal/database"
	"github.com/runeberget/krets/internal/email"
	"github.com/runeberget/krets/internal/logging"
	"github.com/runeberget/krets/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var sender email.Sender
	if cfg.PostmarkToken != "" {
		sender = email.NewPostmarkSender(cfg.PostmarkToken, cfg.FromEmail)
	} else {
		logger.Info("no postmark token configured, logging emails to console")
		sender = email.NewConsoleSender(logger.With("component", "email"))
	}

	var images *bucket.Client
	bucketCfg := bucket.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}
	if bucketCfg.Enabled() {
		images = bucket.New(bucketCfg)
	} else {
		logger.Info("object storage not configured, image upload disabled")
	}

	srv := server.New(db, sender, images, cfg.BaseURL, logger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Hourly sweep for expired magic links, expired sessions, and stale
	// rate limiter entries.
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				if _, err := srv.MagicLinks().CleanupExpired(); err != nil {
					logger.Error("magic link cleanup", "error", err)
				}
				if _, err := srv.Sessions().CleanupExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	go func() {
		logger.Info("krets listening", "port", cfg.Port, "base_url", cfg.BaseURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
