package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args against a fresh database in a
// temp dir and returns stdout.
func execute(t *testing.T, dbPath string, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db", dbPath, "--env", "prod"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func tempDB(t *testing.T) string {
	t.Helper()
	t.Setenv("CHECKPOINT_ROSTER_PATH", "")
	t.Setenv("CHECKPOINT_KIOSK_LOCATIONS", "")
	return filepath.Join(t.TempDir(), "checkpoint.db")
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "checkpoint", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"serve", "migrate", "seed", "scan", "checkin"}

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
	for _, name := range []string{"db", "env", "log-level"} {
		require.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
}

func TestScanCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	scanCmd, _, err := cmd.Find([]string{"scan"})
	require.NoError(t, err)

	kiosk := scanCmd.Flags().Lookup("kiosk")
	require.NotNil(t, kiosk)
	assert.Equal(t, "cli", kiosk.DefValue)
	assert.NotNil(t, scanCmd.Flags().Lookup("location"))
}

func TestMigrate(t *testing.T) {
	dbPath := tempDB(t)

	out, err := execute(t, dbPath, "", "migrate")

	require.NoError(t, err)
	assert.Contains(t, out, "schema version 1")
	_, statErr := os.Stat(dbPath)
	assert.NoError(t, statErr)
}

func TestSeed_RequiresSource(t *testing.T) {
	_, err := execute(t, tempDB(t), "", "seed")
	assert.Error(t, err)
}

func TestSeed_Roster(t *testing.T) {
	dbPath := tempDB(t)
	roster := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(roster, []byte(`
locations:
  - id: lab
    name: Lab
persons:
  - id: p1
    name: Pat
    short_code: "5555"
`), 0o600))

	out, err := execute(t, dbPath, "", "seed", "--roster", roster)
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 1 persons, 1 locations")

	out, err = execute(t, dbPath, "", "checkin", "5555", "--kiosk", "k1", "--location", "lab")
	require.NoError(t, err)
	assert.Equal(t, "Pat arrived\n", out)
}

func TestScan_DebouncesStdin(t *testing.T) {
	dbPath := tempDB(t)
	_, err := execute(t, dbPath, "", "seed", "--dev")
	require.NoError(t, err)

	out, err := execute(t, dbPath, "7777\n7777\n9999\n1234\n", "scan", "--kiosk", "front", "--location", "front-desk")

	require.NoError(t, err)
	assert.Equal(t, "Kim arrived\nerror: person not found\nAri arrived\n", out)
}

func TestCheckIn_SequenceAcrossRuns(t *testing.T) {
	dbPath := tempDB(t)
	_, err := execute(t, dbPath, "", "seed", "--dev")
	require.NoError(t, err)

	out, err := execute(t, dbPath, "", "checkin", "7777", "--kiosk", "front", "--location", "front-desk")
	require.NoError(t, err)
	assert.Equal(t, "Kim arrived\n", out)

	// The kiosk's location survives between runs.
	out, err = execute(t, dbPath, "", "checkin", "7777", "--kiosk", "front")
	require.NoError(t, err)
	assert.Equal(t, "Kim departed\n", out)

	out, err = execute(t, dbPath, "", "checkin", "7777", "--kiosk", "shop", "--location", "workshop")
	require.NoError(t, err)
	assert.Equal(t, "Kim arrived\n", out)

	out, err = execute(t, dbPath, "", "checkin", "7777", "--kiosk", "front")
	require.NoError(t, err)
	assert.Equal(t, "Kim transferred\n", out)
}

func TestCheckIn_Failures(t *testing.T) {
	dbPath := tempDB(t)
	_, err := execute(t, dbPath, "", "seed", "--dev")
	require.NoError(t, err)

	out, err := execute(t, dbPath, "", "checkin", "7777", "--kiosk", "unset")
	assert.ErrorIs(t, err, ErrCheckInFailed)
	assert.Equal(t, "error: no location selected\n", out)

	out, err = execute(t, dbPath, "", "checkin", "9999", "--kiosk", "front", "--location", "front-desk", "--json")
	assert.ErrorIs(t, err, ErrCheckInFailed)
	assert.Contains(t, out, `"code": "person_not_found"`)
}
