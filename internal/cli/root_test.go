package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command against db and returns stdout.
func runCLI(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(append([]string{"--db", db, "--currency", "USD"}, args...))

	err := cmd.Execute()
	return buf.String(), err
}

// mustRun executes the root command and fails the test on error.
func mustRun(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, db, args...)
	require.NoError(t, err, "output: %s", out)
	return out
}

// decodeResponse parses a single JSON CLIResponse.
func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "grocer.db")
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "grocer", cmd.Use)
	assert.Contains(t, cmd.Long, "append-only ledger")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"item", "add"}, {"item", "restock"}, {"item", "edit"}, {"item", "delete"},
		{"item", "clear"}, {"item", "get"}, {"item", "list"}, {"item", "search"},
		{"item", "import"}, {"sell"}, {"change"}, {"sales", "list"}, {"sales", "show"},
		{"sales", "next-id"}, {"sales", "clear"}, {"validate"}, {"test"}, {"config"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
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

	for _, name := range []string{"db", "role", "currency"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		// Defaults come from the environment
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	filterFlag := testCmd.Flags().Lookup("filter")
	require.NotNil(t, filterFlag)
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, err := runCLI(t, tempDB(t), "--format", "invalid", "item", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestInvalidRoleFlag(t *testing.T) {
	_, err := runCLI(t, tempDB(t), "--role", "owner", "item", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown role")
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("GROCER_ROLE", "user")
	t.Setenv("GROCER_CURRENCY", "EUR")
	db := tempDB(t)

	mustRun(t, db, "item", "add", "Rice", "--qty", "5", "--price", "1.20")

	// --role on the command line beats GROCER_ROLE
	out := mustRun(t, db, "--role", "admin", "item", "delete", "Rice")
	assert.Contains(t, out, "Deleted Rice")
}

func TestNewLogger_Levels(t *testing.T) {
	quiet := newLogger(&RootOptions{Format: "text"}, &bytes.Buffer{})
	assert.Equal(t, "warning", quiet.GetLevel().String())

	verbose := newLogger(&RootOptions{Format: "json", Verbose: true}, &bytes.Buffer{})
	assert.Equal(t, "debug", verbose.GetLevel().String())
}

func TestRootOptions_DefaultsWithoutPreRun(t *testing.T) {
	opts := &RootOptions{}
	assert.NotNil(t, opts.logger())
	assert.False(t, opts.role().IsAdmin())

	opts.Role = "Admin"
	assert.True(t, opts.role().IsAdmin())
}

func TestRoleFlagFixesInvalidEnvironment(t *testing.T) {
	t.Setenv("GROCER_ROLE", "cashier")

	out := mustRun(t, tempDB(t), "--role", "user", "item", "list")
	assert.Contains(t, out, "No items.")
}
