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

	for _, name := range []string{"serve", "correlate", "rank", "weather-join", "weather-point", "layers", "colors", "boundaries"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "geolayer", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestCorrelateCommand_Args(t *testing.T) {
	assert.Error(t, correlateCmd.Args(correlateCmd, []string{"gdp"}))
	assert.NoError(t, correlateCmd.Args(correlateCmd, []string{"gdp", "life"}))
	require.NotNil(t, correlateCmd.Flags().Lookup("key"))
}

func TestRankCommand_Flags(t *testing.T) {
	flag := rankCmd.Flags().Lookup("order")
	require.NotNil(t, flag)
	assert.Equal(t, "top", flag.DefValue)
	require.NotNil(t, rankCmd.Flags().Lookup("shown"))
}

func TestWeatherJoinCommand_Flags(t *testing.T) {
	flag := weatherJoinCmd.Flags().Lookup("variable")
	require.NotNil(t, flag)
	assert.Equal(t, "temperature_2m", flag.DefValue)
	require.NotNil(t, weatherJoinCmd.Flags().Lookup("daily"))
}
