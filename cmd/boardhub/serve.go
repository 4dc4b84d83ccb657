package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"boardhub/internal/auth"
	"boardhub/internal/db"
	"boardhub/internal/httpapi"
	"boardhub/internal/renorm"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the boardhub API server",
		Long:  "Runs the HTTP API and, when enabled, the scheduled position renormalization job.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "boardhub.yaml", "path to boardhub config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg, true)

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	if cfg.Renorm.Enabled {
		job, err := renorm.Job(gormDB, cfg.Renorm.Schedule, log)
		if err != nil {
			return err
		}
		defer job.Stop()
		log.WithField("schedule", cfg.Renorm.Schedule).Info("renormalization job scheduled")
	}

	return httpapi.Start(ctx, cfg.Listen, httpapi.Options{
		DB: gormDB,
		Auth: auth.Options{
			Secret:   cfg.Auth.Secret,
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
		},
		Log: log,
	})
}
