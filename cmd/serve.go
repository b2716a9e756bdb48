package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"git-sync-operator/internal/app"
)

// serveCmd runs the reconcile loop until terminated.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reconcile loop",
	Long: `Clones the configuration repository (or reuses an existing working copy in
CONFIG_DIR) and reconciles every managed namespace each GIT_SYNC_INTERVAL
seconds:

  - stale namespaces get <dir>/<namespace> and, with CLUSTER_NAME set,
    <dir>/<cluster>/<namespace> server-side applied;
  - deployments are annotated with the new revision to roll their pods;
  - once a deployment is fully healthy at the revision it is recorded as
    deployed and the notification sinks are invoked once.

Prometheus metrics and /healthz are served on METRICS_ADDR. SIGINT and
SIGTERM stop the loop after the current step.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	application, err := app.NewApplication(ctx, app.NewConfig(app.ModeServe, debug, configPath))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
