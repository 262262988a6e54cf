package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MZiaRAwan/PF-Project/internal/testutil"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(EnvDB, "")
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvMaxTicks, "")

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeLevel writes the line level into a temp dir and returns its path.
func writeLevel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "line.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testutil.LineLevelYAML), 0o644))
	return path
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "trainsim", cmd.Use)
	assert.Contains(t, cmd.Long, "digest chain")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"run", "replay", "validate", "trace", "test", "serve", "runs"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	envFlag := cmd.PersistentFlags().Lookup("env-file")
	require.NotNil(t, envFlag)
	assert.Equal(t, ".env", envFlag.DefValue)
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	for _, name := range []string{"db", "out", "max-ticks", "weather", "policy", "seed", "require-complete"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "o", runCmd.Flags().Lookup("out").Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "validate", "x.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestEnvFile_SuppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "env.db")
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TRAINSIM_DB="+db+"\nTRAINSIM_MAX_TICKS=3\n"), 0o644))

	// Unset rather than empty so godotenv fills them in.
	t.Setenv(EnvDB, "")
	t.Setenv(EnvMaxTicks, "")
	os.Unsetenv(EnvDB)
	os.Unsetenv(EnvMaxTicks)

	stdout := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--env-file", envFile, "run", writeLevel(t)})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), "incomplete after 3 ticks")
	_, err := os.Stat(db)
	assert.NoError(t, err, "run should be stored in the database named by the env file")
}

func TestEnvFile_Missing(t *testing.T) {
	require.NoError(t, loadEnv(filepath.Join(t.TempDir(), "absent.env")))
	require.NoError(t, loadEnv(""))
}

func TestMaxTicks(t *testing.T) {
	t.Setenv(EnvMaxTicks, "")
	n, err := maxTicks(0)
	require.NoError(t, err)
	assert.EqualValues(t, 2000, n)

	n, err = maxTicks(12)
	require.NoError(t, err)
	assert.EqualValues(t, 12, n)

	t.Setenv(EnvMaxTicks, "40")
	n, err = maxTicks(0)
	require.NoError(t, err)
	assert.EqualValues(t, 40, n)

	t.Setenv(EnvMaxTicks, "soon")
	_, err = maxTicks(0)
	assert.Error(t, err)
}
