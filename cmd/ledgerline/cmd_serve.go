package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/user/ledgerline/internal/audit"
	"github.com/user/ledgerline/internal/classifier"
	"github.com/user/ledgerline/internal/gateway"
	"github.com/user/ledgerline/internal/line"
	"github.com/user/ledgerline/internal/logger"
	"github.com/user/ledgerline/internal/scheduler"
	"github.com/user/ledgerline/internal/store"
	"github.com/user/ledgerline/internal/webhook"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ledgerline webhook server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := logger.New(cfg.LogLevel)

	if cfg.LINE.ChannelSecret == "" || cfg.LINE.ChannelAccessToken == "" {
		return errors.New("line.channel_secret and line.channel_access_token are required")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	entries := store.NewEntries(db)
	logs := store.NewLogs(db)
	auditLog := audit.New(logs, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Classifier is optional; without a key the deterministic parser runs.
	var cls gateway.Classifier
	if cfg.Gemini.APIKey != "" {
		gemini, err := classifier.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
		if err != nil {
			return fmt.Errorf("create classifier: %w", err)
		}
		cls = gemini
		log.Info().Str("model", cfg.Gemini.Model).Msg("gemini classifier enabled")
	} else {
		log.Warn().Msg("no gemini api key, falling back to deterministic parser")
	}

	replier := line.NewClient(&line.Config{AccessToken: cfg.LINE.ChannelAccessToken})
	gw := gateway.New(cls, entries, replier, auditLog, log)
	srv := webhook.NewServer(cfg.LINE.ChannelSecret, gw, entries, logs, auditLog, log)

	sched := scheduler.New(logs, cfg.LogRetentionDays, log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	httpServer := &http.Server{
		Addr:    cfg.Listen,
		Handler: srv,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info().Str("listen", cfg.Listen).Str("db", cfg.DBPath).Msg("ledgerline started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
