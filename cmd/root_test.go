package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetVersion(t *testing.T) {
	original := rootCmd.Version
	defer func() { rootCmd.Version = original }()

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", GetVersion())
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "git-sync-operator", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("debug"))
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "git-sync-operator version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	require.NoError(t, testCmd.Execute())

	assert.Equal(t, "git-sync-operator version 1.0.0\n", buf.String())
}

func TestSubcommands(t *testing.T) {
	found := map[string]*cobra.Command{}
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = c
	}

	for _, name := range []string{"version", "serve", "sync", "status"} {
		assert.Contains(t, found, name)
	}
	for _, name := range []string{"sync", "status"} {
		flag := found[name].Flags().Lookup("output")
		require.NotNil(t, flag, name)
		assert.Equal(t, "o", flag.Shorthand)
		assert.Equal(t, "table", flag.DefValue)
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCodeError, getExitCode(errors.New("boom")))
	assert.Equal(t, ExitCodePartial, getExitCode(&partialError{err: errors.New("search failed")}))
	assert.Equal(t, ExitCodePartial, getExitCode(fmt.Errorf("wrapped: %w", &partialError{err: errors.New("x")})))
}

func TestSyncRejectsUnknownFormat(t *testing.T) {
	original := syncOutput
	defer func() { syncOutput = original }()
	syncOutput = "xml"

	err := runSync(syncCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestStatusRejectsUnknownFormat(t *testing.T) {
	original := statusOutput
	defer func() { statusOutput = original }()
	statusOutput = "csv"

	err := runStatus(statusCmd, nil)
	assert.Error(t, err)
}
