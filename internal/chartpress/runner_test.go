package chartpress

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/chartship/internal/model"
)

// TestBuildArgs pins the exact argument list the tool receives. The
// ordering and the verbatim commit range are part of the CLI contract
// with the build tool.
func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name        string
		commitRange string
		push        bool
		want        []string
	}{
		{
			name:        "plain build",
			commitRange: "abc123...def456",
			push:        false,
			want:        []string{"build", "--commit-range", "abc123...def456"},
		},
		{
			name:        "push build",
			commitRange: "abc123...def456",
			push:        true,
			want:        []string{"build", "--commit-range", "abc123...def456", "--push"},
		},
		{
			name:        "empty commit range passes through",
			commitRange: "",
			push:        false,
			want:        []string{"build", "--commit-range", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildArgs(tt.commitRange, tt.push))
		})
	}
}

// TestExecRunner_StreamsOutput verifies the child process's stdout
// reaches the runner's writer unmodified.
func TestExecRunner_StreamsOutput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := &ExecRunner{Stdout: &stdout, Stderr: &stderr}

	err := r.Run(context.Background(), "sh", []string{"-c", "echo building charts"})
	require.NoError(t, err)
	assert.Equal(t, "building charts\n", stdout.String())
	assert.Empty(t, stderr.String())
}

// TestExecRunner_NonZeroExit verifies a failing tool maps to the build
// exit code and reports the tool's own exit status.
func TestExecRunner_NonZeroExit(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := &ExecRunner{Stdout: &stdout, Stderr: &stderr}

	err := r.Run(context.Background(), "sh", []string{"-c", "exit 3"})
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitBuildError, cliErr.Code)
	assert.Contains(t, err.Error(), "exited with code 3")
}

// TestExecRunner_MissingTool verifies a tool that cannot be started at
// all still maps to the build exit code.
func TestExecRunner_MissingTool(t *testing.T) {
	r := NewExecRunner()

	err := r.Run(context.Background(), "definitely-not-a-real-tool-1f3a", nil)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitBuildError, cliErr.Code)
}
