// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/inkwell/inkwell/internal/auth"
	authpg "github.com/inkwell/inkwell/internal/auth/postgres"
	"github.com/inkwell/inkwell/internal/blog"
	blogpg "github.com/inkwell/inkwell/internal/blog/postgres"
	"github.com/inkwell/inkwell/internal/config"
	"github.com/inkwell/inkwell/internal/httpapi"
	"github.com/inkwell/inkwell/internal/logging"
	"github.com/inkwell/inkwell/internal/mail"
	"github.com/inkwell/inkwell/internal/observability"
	"github.com/inkwell/inkwell/internal/store"
)

// shutdownTimeout bounds graceful shutdown of the HTTP servers.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the blog API server",
		Long: `Start the HTTP API server together with the observability server
(metrics and health probes).`,
		RunE: runServe,
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.Setup("inkwell", version, cfg.Log.Format, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	accounts := authpg.NewAccountRepository(pool)
	posts := blogpg.NewPostRepository(pool)

	hasher := auth.NewBcryptHasher()
	tokens, err := auth.NewTokenService([]byte(cfg.Auth.Secret), cfg.Auth.Algorithm)
	if err != nil {
		return err
	}

	var dispatcher mail.Dispatcher
	if cfg.Mail.Host != "" {
		dispatcher, err = mail.NewSMTPDispatcher(mail.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			FromName: cfg.Mail.FromName,
		})
		if err != nil {
			return err
		}
	} else {
		logger.Warn("no SMTP host configured, outbound mail disabled")
		dispatcher = mail.NewNoopDispatcher(logger)
	}

	authSvc, err := auth.NewServiceWithLogger(accounts, hasher, tokens, dispatcher, auth.ServiceConfig{
		SessionTTL:   cfg.Auth.TokenTTL,
		ResetTTL:     cfg.Auth.ResetTokenTTL,
		ResetBaseURL: cfg.Auth.ResetBaseURL,
	}, logger)
	if err != nil {
		return err
	}

	postSvc, err := blog.NewPostService(posts)
	if err != nil {
		return err
	}

	obsSrv := observability.NewServer(cfg.Server.MetricsAddr, func() bool {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return pool.Ping(pingCtx) == nil
	})

	apiSrv, err := httpapi.NewServer(cfg.Server.ListenAddr, authSvc, postSvc, obsSrv.Metrics(), logger)
	if err != nil {
		return err
	}

	obsErrCh, err := obsSrv.Start()
	if err != nil {
		return oops.With("operation", "start observability server").Wrap(err)
	}

	apiErrCh, err := apiSrv.Start()
	if err != nil {
		stopServer(obsSrv, logger)
		return oops.With("operation", "start api server").Wrap(err)
	}

	logger.Info("inkwell started",
		"api_addr", apiSrv.Addr(),
		"metrics_addr", obsSrv.Addr(),
	)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-apiErrCh:
		if err != nil {
			logger.Error("api server failed", "error", err)
		}
	case err := <-obsErrCh:
		if err != nil {
			logger.Error("observability server failed", "error", err)
		}
	}

	stopServer(apiSrv, logger)
	stopServer(obsSrv, logger)
	return nil
}

// stopServer shuts down a server with a bounded timeout, logging failures.
func stopServer(s interface{ Stop(context.Context) error }, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
}
