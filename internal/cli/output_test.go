package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E005", "config not found", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E005", resp.Error.Code)
	assert.Equal(t, "config not found", resp.Error.Message)
}

func TestOutputFormatter_JSONFailureCarriesData(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Failure(CodeScenario, "1 scenario(s) failed", TestResult{Failed: 1, Total: 1})
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Failed)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeScenario, resp.Error.Code)
}

func TestOutputFormatter_TextFailureWritesNothing(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Failure(CodeInvalid, "configuration invalid", nil))
	assert.Empty(t, buf.String())
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success(PlayResult{Song: "RockinRobin", Score: 12, Misses: 3, Steps: 400, Completed: true})
	require.NoError(t, err)
	assert.Equal(t, "RockinRobin: score 12, 3 misses, 400 steps\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E005", "config not found", map[string]string{"path": "game.cue"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E005]")
	assert.Contains(t, buf.String(), "config not found")
	assert.NotContains(t, buf.String(), "Details:")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"path": "game.cue"}
	err := formatter.Error("E005", "config not found", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E005]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			errOut := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: errOut,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Replaying %s", "sess-1")

			assert.Empty(t, out.String(), "diagnostics never go to the data stream")
			if tt.wantLog {
				assert.Contains(t, errOut.String(), "Replaying sess-1")
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "replay", errors.New("mismatch")))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.Equal(t, "outer: replay: mismatch", wrapped.Error())
}
