package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"git-sync-operator/internal/app"
	"git-sync-operator/internal/formatting"
)

var syncOutput string

// syncCmd runs a single reconciliation pass and prints its summary.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single reconciliation pass",
	Long: `Performs exactly one pass over the managed namespaces, prints a summary and
exits. The exit code is 2 when at least one namespace failed.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseFormat(syncOutput)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	application, err := app.NewApplication(ctx, app.NewConfig(app.ModeSync, debug, configPath))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	pass, passErr := application.RunOnce(ctx)
	if err := formatting.Write(cmd.OutOrStdout(), formatting.Options{Format: format, Color: true}, formatting.NewPassReport(pass)); err != nil {
		return err
	}
	if passErr != nil {
		return &partialError{err: passErr}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringVarP(&syncOutput, "output", "o", "table", "Output format: table, json or yaml")
}
