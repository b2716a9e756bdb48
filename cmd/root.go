package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (invalid configuration, bootstrap failure).
	ExitCodeError = 1
	// ExitCodePartial indicates a pass where at least one namespace failed.
	ExitCodePartial = 2
)

// configPath is the optional YAML configuration file shared by all commands.
var configPath string

// debug forces debug logging regardless of LOG_LEVEL.
var debug bool

// rootCmd represents the base command for the git-sync-operator application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "git-sync-operator",
	Short: "Keep cluster namespaces in sync with a git repository",
	Long: `git-sync-operator applies the manifests of a git repository to a fixed set
of namespaces and tracks, per namespace and deployment, which revision has
been applied and which has finished rolling out.

Configuration is read from the environment (CONFIG_REPO, MANAGED_NAMESPACES,
...). An optional YAML file with the same keys can be given with --config;
environment variables take precedence over the file.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "git-sync-operator version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// partialError marks a command that ran but left some namespaces failed.
type partialError struct {
	err error
}

func (e *partialError) Error() string { return e.err.Error() }

func (e *partialError) Unwrap() error { return e.err }

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var partial *partialError
	if errors.As(err, &partial) {
		return ExitCodePartial
	}
	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Optional YAML configuration file (environment variables take precedence)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
}
