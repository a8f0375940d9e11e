package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"play", "replay", "trace", "test", "validate"}, names)
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	path := writeFile(t, "game.cue", "")

	_, err := executeCommand(t, "validate", path, "--format", "yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestValidateCommand_Valid(t *testing.T) {
	path := writeFile(t, "game.cue", "song: name: \"Test\"\ngeometry: hit_radius: 20\n")

	out, err := executeCommand(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+path+" is valid (config ")
}

func TestValidateCommand_ValidJSON(t *testing.T) {
	path := writeFile(t, "game.cue", "")

	out, err := executeCommand(t, "validate", path, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Len(t, resp.Data.ConfigHash, 64)
	assert.Empty(t, resp.Data.Errors)
}

func TestValidateCommand_Invalid(t *testing.T) {
	path := writeFile(t, "game.cue", "keys: lanes: \"hhjk\"\n")

	out, err := executeCommand(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ "+path+": 1 error(s)")
	assert.Contains(t, out, "[E007]")
	assert.Contains(t, out, "bound to lanes 0 and 1")
}

func TestValidateCommand_InvalidJSON(t *testing.T) {
	path := writeFile(t, "game.cue", "keys: lanes: \"hhjk\"\n")

	out, err := executeCommand(t, "validate", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalid, resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, "E007", resp.Data.Errors[0].Code)
}

func TestValidateCommand_MissingFile(t *testing.T) {
	out, err := executeCommand(t, "validate", "/nonexistent/game.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestValidateCommand_RequiresPath(t *testing.T) {
	_, err := executeCommand(t, "validate")
	require.Error(t, err)
}
