package cli

import (
	"testing"

	goflags "github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildParser_RegistersAllCommands(t *testing.T) {
	parser, _, cmds := buildParser("test")

	names := make([]string, 0, 3)
	for _, cmd := range parser.Commands() {
		names = append(names, cmd.Name)
	}
	assert.ElementsMatch(t, []string{"run", "refilter", "periods"}, names)

	require.NotNil(t, cmds.Run)
	require.NotNil(t, cmds.Refilter)
	require.NotNil(t, cmds.Periods)
}

func TestParse_RunFlags(t *testing.T) {
	parser, globals, cmds := buildParser("test")

	// Stop before Execute: parse only, the command would hit the network.
	parser.CommandHandler = func(_ goflags.Commander, _ []string) error { return nil }

	_, err := parser.ParseArgs([]string{"--config", "custom.yaml", "run", "--hn-only", "--since", "2024-01-15"})
	require.NoError(t, err)

	assert.Equal(t, "custom.yaml", globals.Config)
	assert.True(t, cmds.Run.HNOnly)
	assert.False(t, cmds.Run.ArxivOnly)
	assert.Equal(t, "2024-01-15", cmds.Run.Since)
}

func TestParse_RefilterFlags(t *testing.T) {
	parser, _, cmds := buildParser("test")
	parser.CommandHandler = func(_ goflags.Commander, _ []string) error { return nil }

	_, err := parser.ParseArgs([]string{"refilter", "--period", "2024-W05", "--reset"})
	require.NoError(t, err)

	assert.Equal(t, "2024-W05", cmds.Refilter.Period)
	assert.True(t, cmds.Refilter.Reset)
}

func TestRunWithArgs_Version(t *testing.T) {
	err := RunWithArgs("1.2.3", []string{"--version"})
	assert.NoError(t, err)
}

func TestRun_SourceSelectionMutuallyExclusive(t *testing.T) {
	cmd := &RunCommand{HNOnly: true, ArxivOnly: true, globals: &GlobalFlags{}}
	err := cmd.Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestRun_RejectsBadSinceDate(t *testing.T) {
	cmd := &RunCommand{Since: "last tuesday", globals: &GlobalFlags{}}
	err := cmd.Execute(nil)
	require.Error(t, err)
}

func TestRefilter_RequiresPeriod(t *testing.T) {
	cmd := &RefilterCommand{globals: &GlobalFlags{}}
	err := cmd.Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--period")
}

func TestRefilter_RejectsMalformedPeriod(t *testing.T) {
	cmd := &RefilterCommand{Period: "week five", globals: &GlobalFlags{}}
	err := cmd.Execute(nil)
	require.Error(t, err)
}
