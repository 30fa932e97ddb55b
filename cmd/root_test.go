package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"ingest", "integrate", "rescore", "report", "export", "serve", "enrich"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "lead-engine", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestIngestCommand_Flags(t *testing.T) {
	for _, name := range []string{"dir", "limit"} {
		assert.NotNil(t, ingestCmd.Flags().Lookup(name), "ingest should have --%s flag", name)
		assert.NotNil(t, integrateCmd.Flags().Lookup(name), "integrate should have --%s flag", name)
	}
	assert.Equal(t, "0", ingestCmd.Flags().Lookup("limit").DefValue)
}

func TestRescoreCommand_Flags(t *testing.T) {
	flag := rescoreCmd.Flags().Lookup("strategy")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestReportCommand_Flags(t *testing.T) {
	top := reportCmd.Flags().Lookup("top")
	require.NotNil(t, top)
	assert.Equal(t, "10", top.DefValue)

	format := reportCmd.Flags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "table", format.DefValue)
}

func TestExportCommand_Flags(t *testing.T) {
	targets := exportCmd.Flags().Lookup("targets")
	require.NotNil(t, targets)
	assert.Equal(t, "[csv]", targets.DefValue)

	for _, name := range []string{"min-score", "dir"} {
		assert.NotNil(t, exportCmd.Flags().Lookup(name), "export should have --%s flag", name)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestEnrichCommand_Args(t *testing.T) {
	assert.NotNil(t, enrichCmd.Flags().Lookup("handle"))
	assert.NotNil(t, enrichCmd.Flags().Lookup("pain-point"))

	assert.Error(t, enrichCmd.Args(enrichCmd, nil))
	assert.NoError(t, enrichCmd.Args(enrichCmd, []string{"lead-1"}))
}
