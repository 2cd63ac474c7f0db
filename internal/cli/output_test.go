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

func TestFormatterSuccess(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "text", Writer: buf}
		require.NoError(t, f.Success("Schema dc valid"))
		assert.Equal(t, "Schema dc valid\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "json", Writer: buf}
		require.NoError(t, f.Success(map[string]int{"slots": 3}))

		var resp struct {
			Status string         `json:"status"`
			Data   map[string]int `json:"data"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, 3, resp.Data["slots"])
	})
}

func TestFormatterError(t *testing.T) {
	details := map[string]string{"file": "dc.cue"}

	tests := []struct {
		name    string
		verbose bool
		details any
		want    string
	}{
		{"plain", false, nil, "Error [E001]: schema name is required\n"},
		{"details hidden", false, details, "Error [E001]: schema name is required\n"},
		{"details verbose", true, details, "Error [E001]: schema name is required\nDetails: map[file:dc.cue]\n"},
		{"verbose without details", true, nil, "Error [E001]: schema name is required\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}
			require.NoError(t, f.Error("E001", "schema name is required", tt.details))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestFormatterErrorJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}
	require.NoError(t, f.Error("E004", "loading CUE files: expected label", map[string]string{"line": "42"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E004", resp.Error.Code)
	assert.Equal(t, "loading CUE files: expected label", resp.Error.Message)
	assert.Equal(t, map[string]any{"line": "42"}, resp.Error.Details)
}

func TestFormatterVerboseLog(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		errWriter bool
		wantOut   string
		wantErr   string
	}{
		{"quiet", false, true, "", ""},
		{"to err writer", true, true, "", "Found 1 CUE file(s)\n"},
		{"falls back to writer", true, false, "Found 1 CUE file(s)\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
			f := &OutputFormatter{Format: "json", Writer: out, Verbose: tt.verbose}
			if tt.errWriter {
				f.ErrWriter = errOut
			}
			f.VerboseLog("Found %d CUE file(s)", 1)
			assert.Equal(t, tt.wantOut, out.String())
			assert.Equal(t, tt.wantErr, errOut.String())
		})
	}
}

func TestCLIResponseInstanceID(t *testing.T) {
	resp := CLIResponse{Status: "ok", Data: map[string]int{"count": 42}}
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "instance_id")

	resp.InstanceID = "test-instance-1"
	data, err = json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"instance_id":"test-instance-1"`)
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", errors.New("boom"), ExitFailure},
		{"exit error", NewExitError(ExitCommandError, "bad flag"), ExitCommandError},
		{"wrapped exit error", fmt.Errorf("run: %w", NewExitError(ExitFailure, "1 scenario(s) failed")), ExitFailure},
		{"exit error with cause", WrapExitError(ExitCommandError, "load", errors.New("missing")), ExitCommandError},
		{"failuref", failuref("%d slot(s) could not be read", 2), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitErrorMessage(t *testing.T) {
	cause := errors.New("missing")
	wrapped := WrapExitError(ExitCommandError, "load", cause)
	assert.Equal(t, "load: missing", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)

	assert.Equal(t, "2 slot(s) could not be read", failuref("%d slot(s) could not be read", 2).Error())
}

func TestCommandError(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	err := commandError(f, ErrCodeNotFound, "specs directory not found: /x")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, "E005: specs directory not found: /x", err.Error())
	assert.Equal(t, "Error [E005]: specs directory not found: /x\n", buf.String())
}
