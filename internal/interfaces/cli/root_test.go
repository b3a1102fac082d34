package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommandShape(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "chemreconcile", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "validate")
}

func TestRootHelpRuns(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "validate")
}

func TestPersistentPreRunBuildsContext(t *testing.T) {
	cmd := NewRootCommand()
	opts := &RootOptions{LogLevel: "debug"}

	require.NoError(t, persistentPreRun(cmd, opts))

	cliCtx, err := GetCLIContext(cmd)
	require.NoError(t, err)
	require.NotNil(t, cliCtx.Config)
	require.NotNil(t, cliCtx.Logger)
	assert.Equal(t, "debug", cliCtx.Config.Log.Level)
}

func TestVerboseForcesDebug(t *testing.T) {
	cmd := NewRootCommand()
	opts := &RootOptions{LogLevel: "warn", Verbose: true}

	require.NoError(t, persistentPreRun(cmd, opts))

	cliCtx, err := GetCLIContext(cmd)
	require.NoError(t, err)
	assert.Equal(t, "debug", cliCtx.Config.Log.Level)
}

func TestGetCLIContextMissing(t *testing.T) {
	_, err := GetCLIContext(&cobra.Command{})
	assert.Error(t, err)
}

func TestValidateCmdRequiresOneArg(t *testing.T) {
	cmd := NewValidateCmd()
	assert.Error(t, cmd.Args(cmd, []string{}))
	assert.Error(t, cmd.Args(cmd, []string{"a", "b"}))
	assert.NoError(t, cmd.Args(cmd, []string{"input.csv"}))
}
