package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"boardhub/internal/boardsync"
	"boardhub/internal/config"

	"github.com/spf13/cobra"
)

func newBoardCmd() *cobra.Command {
	var (
		configPath string
		projectID  uint
	)

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print a project's board",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			client := syncClient(cfg, projectID)
			if err := client.Refresh(context.Background()); err != nil {
				return err
			}
			printBoard(cmd.OutOrStdout(), client)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "boardhub.yaml", "path to boardhub config file")
	cmd.Flags().UintVarP(&projectID, "project", "p", 1, "project id")
	return cmd
}

func newMoveCmd() *cobra.Command {
	var (
		configPath string
		projectID  uint
		status     int
		before     uint
	)

	cmd := &cobra.Command{
		Use:   "move <task-id>",
		Short: "Move a task to another column",
		Long:  "Applies the move optimistically and reports whether the server confirmed or reverted it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var taskID uint
			if _, err := fmt.Sscanf(args[0], "%d", &taskID); err != nil {
				return fmt.Errorf("task id must be a number: %q", args[0])
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			client := syncClient(cfg, projectID)
			ctx := context.Background()
			if err := client.Refresh(ctx); err != nil {
				return err
			}

			if err := client.MoveTask(ctx, taskID, status, before); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Move reverted: %v\n", err)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Move confirmed (%s).\n", client.State())
			printBoard(cmd.OutOrStdout(), client)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "boardhub.yaml", "path to boardhub config file")
	cmd.Flags().UintVarP(&projectID, "project", "p", 1, "project id")
	cmd.Flags().IntVarP(&status, "status", "s", 1, "target status code")
	cmd.Flags().UintVarP(&before, "before", "b", 0, "drop before this task id (0 appends)")
	return cmd
}

func syncClient(cfg *config.Config, projectID uint) *boardsync.Client {
	return boardsync.New(boardsync.Options{
		BaseURL:   cfg.Client.ServerURL,
		Token:     cfg.Client.Token,
		ProjectID: projectID,
	})
}

func printBoard(out io.Writer, client *boardsync.Client) {
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	for _, col := range client.Columns() {
		fmt.Fprintf(w, "%s (%d)\n", col.Title, len(col.Tasks))
		for _, t := range col.Tasks {
			assignee := t.AssigneeName
			if assignee == "" {
				assignee = "-"
			}
			fmt.Fprintf(w, "  #%d\t%s\t%s\tP%d\n", t.ID, t.Title, assignee, t.Priority)
		}
	}
	w.Flush()
}
