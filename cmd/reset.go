package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all identities and attendance events",
	Long: `Delete every enrolled identity and all attendance events. This cannot
be undone, so the --confirm flag is required.

Example:
  attendance reset --confirm`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().Bool("confirm", false, "Required to actually delete all data")
}

func runReset(cmd *cobra.Command, args []string) error {
	if !mustGetBool(cmd, "confirm") {
		return errors.New("refusing to delete all data without --confirm")
	}

	cfg, pool, err := connectDatabase()
	if err != nil {
		return err
	}
	defer pool.Close()

	svc, _, _ := buildService(cfg, pool)

	if err := svc.Reset(context.Background()); err != nil {
		return fmt.Errorf("failed to reset: %w", err)
	}

	fmt.Println("All identities and attendance events deleted.")
	return nil
}
