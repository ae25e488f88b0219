// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillnote/quillnote/internal/auth"
	authpg "github.com/quillnote/quillnote/internal/auth/postgres"
	"github.com/quillnote/quillnote/internal/config"
	"github.com/quillnote/quillnote/internal/logging"
	"github.com/quillnote/quillnote/internal/mail"
	notespg "github.com/quillnote/quillnote/internal/notes/postgres"
	"github.com/quillnote/quillnote/internal/observability"
	"github.com/quillnote/quillnote/internal/store"
	"github.com/quillnote/quillnote/internal/web"
	"github.com/quillnote/quillnote/pkg/errutil"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the QuillNote server",
		Long: `Start the QuillNote HTTP server together with the observability
endpoints. Configuration comes from the config file, flags, and
DATABASE_URL.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	// Flag names map to config keys by dash-to-dot replacement. Defaults
	// mirror config.Default so an unchanged flag never masks a file value.
	defaults := config.Default()
	cmd.Flags().String("database-url", "", "PostgreSQL connection string")
	cmd.Flags().String("server-addr", defaults.Server.Addr, "HTTP listen address")
	cmd.Flags().String("server-metrics", defaults.Server.Metrics, "metrics/health listen address (empty = disabled)")
	cmd.Flags().String("log-format", defaults.Log.Format, "log format (json or text)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logging.SetDefault(logging.Options{
		Service: "quillnote",
		Version: version,
		Format:  cfg.Log.Format,
	})
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	hasher := auth.NewSHA256Hasher()
	users := authpg.NewUserRepository(pool)
	noteRepo := notespg.NewNoteRepository(pool)

	var mailer auth.Mailer
	if cfg.SMTP.Host != "" {
		m, err := mail.NewSMTPMailer(mail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		if err != nil {
			return err
		}
		mailer = m
	} else {
		logger.Warn("no smtp host configured, password reset mail disabled")
	}

	authSvc, err := auth.NewService(users, hasher, logger)
	if err != nil {
		return err
	}
	accountSvc, err := auth.NewAccountService(users, hasher, logger)
	if err != nil {
		return err
	}
	resetSvc, err := auth.NewPasswordResetService(users, hasher, mailer, logger)
	if err != nil {
		return err
	}

	var metrics *observability.Metrics
	var obsErrCh <-chan error
	var obsServer *observability.Server
	if cfg.Server.Metrics != "" {
		obsServer = observability.NewServer(cfg.Server.Metrics, func() bool {
			return pool.Ping(ctx) == nil
		})
		obsErrCh, err = obsServer.Start()
		if err != nil {
			return err
		}
		metrics = obsServer.Metrics()
	}

	webServer, err := web.NewServer(web.Options{
		Addr:     cfg.Server.Addr,
		Auth:     authSvc,
		Accounts: accountSvc,
		Resets:   resetSvc,
		Sessions: auth.NewManager(),
		Notes:    noteRepo,
		Metrics:  metrics,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	webErrCh, err := webServer.Start()
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-webErrCh:
		if err != nil {
			errutil.LogError(logger, "web server failed", err)
		}
	case err := <-obsErrCh:
		if err != nil {
			errutil.LogError(logger, "observability server failed", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := webServer.Shutdown(shutdownCtx); err != nil {
		errutil.LogError(logger, "web server shutdown", err)
	}
	if obsServer != nil {
		if err := obsServer.Shutdown(shutdownCtx); err != nil {
			errutil.LogError(logger, "observability server shutdown", err)
		}
	}

	logger.Info("server stopped")
	return nil
}
