//go:build !integration

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"augment", "minimize", "run", "resolve", "runs", "config", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "ror-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestRunsCommand_Flags(t *testing.T) {
	for _, name := range []string{"stage", "status", "limit"} {
		assert.NotNil(t, runsCmd.Flags().Lookup(name), "runs should have --%s flag", name)
	}
	assert.Equal(t, "20", runsCmd.Flags().Lookup("limit").DefValue)
}

func TestAugmentCommand_MissingArgumentPrintsUsage(t *testing.T) {
	for _, args := range [][]string{{"augment"}, {"augment", "   "}, {"run"}} {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(args)

		err := rootCmd.Execute()
		require.NoError(t, err, "args %v", args)
		assert.Contains(t, out.String(), usageMessage, "args %v", args)
	}
	rootCmd.SetOut(nil)
	rootCmd.SetArgs(nil)
}

func TestInputArg(t *testing.T) {
	assert.Equal(t, "", inputArg(nil))
	assert.Equal(t, "", inputArg([]string{" "}))
	assert.Equal(t, "in.csv", inputArg([]string{" in.csv "}))
}
