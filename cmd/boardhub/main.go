package main

import (
	"fmt"
	"os"

	"boardhub/internal/config"
	"boardhub/internal/db"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boardhub",
		Short: "Boardhub - Kanban board backend and sync client",
		Long:  "Boardhub serves a project-management API and keeps board clients in sync optimistically.",
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newBoardCmd())
	cmd.AddCommand(newMoveCmd())
	cmd.AddCommand(newRenormCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "boardhub %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// connectFromConfig loads the config and opens the configured database.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	var gormDB *gorm.DB
	switch cfg.Database.Driver {
	case "sqlite":
		gormDB, err = db.ConnectSQLite(cfg.Database.Path)
	default:
		gormDB, err = db.Connect(cfg.Database.User, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	}
	if err != nil {
		return nil, nil, err
	}
	return cfg, gormDB, nil
}

// newLogger builds the process logger from config.
func newLogger(cfg *config.Config, jsonOutput bool) *logrus.Logger {
	log := logrus.New()
	if jsonOutput {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
