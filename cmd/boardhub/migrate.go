package main

import (
	"fmt"

	"boardhub/internal/db"
	"boardhub/internal/renorm"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  "Runs GORM AutoMigrate for every boardhub model. Safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(gormDB); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "boardhub.yaml", "path to boardhub config file")
	return cmd
}

func newRenormCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "renorm",
		Short: "Renormalize task positions once, immediately",
		Long:  "Rewrites every column's positions back onto the 1000-step ladder without changing task order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			n, err := renorm.All(gormDB)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rewrote %d position(s).\n", n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "boardhub.yaml", "path to boardhub config file")
	return cmd
}
