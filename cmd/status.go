package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"git-sync-operator/internal/app"
	"git-sync-operator/internal/formatting"
)

var statusOutput string

// statusCmd prints the applied and deployed revisions recorded in the ledger.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and deployed revisions per namespace",
	Long: `Reads the Version records of every managed namespace and prints, per
record, the applied and deployed revision. Nothing is cloned or changed.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	application, err := app.NewApplication(ctx, app.NewConfig(app.ModeStatus, debug, configPath))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	statuses := application.Status(ctx)
	if err := formatting.Write(cmd.OutOrStdout(), formatting.Options{Format: format, Color: true}, formatting.NewStatusReport(statuses)); err != nil {
		return err
	}
	for _, st := range statuses {
		if st.Err != nil {
			return &partialError{err: fmt.Errorf("could not read namespace %s: %w", st.Namespace, st.Err)}
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format: table, json or yaml")
}
