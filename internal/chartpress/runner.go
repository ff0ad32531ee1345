package chartpress

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/mmr-tortoise/chartship/internal/model"
)

// BuildArgs constructs the argument list for a build invocation:
//
//	build --commit-range <range> [--push]
//
// The commit range is passed through byte-for-byte as the CI runner
// supplied it, including when empty — the tool owns the semantics of
// the value, chartship only transports it.
func BuildArgs(commitRange string, push bool) []string {
	args := []string{"build", "--commit-range", commitRange}
	if push {
		args = append(args, "--push")
	}
	return args
}

// Runner executes the external chart build tool. The single
// implementation runs a child process; tests substitute a recorder.
type Runner interface {
	// Run invokes tool with args and blocks until it exits.
	Run(ctx context.Context, tool string, args []string) error
}

// ExecRunner runs the build tool as a child process. The tool's
// stdout and stderr stream through unchanged: its output is the only
// diagnostic surface the pipeline offers for build failures, exactly
// as when the CI runner invoked the tool directly.
type ExecRunner struct {
	// Dir is the working directory for the tool. Empty means the
	// current directory, where the tool expects its own config file.
	Dir string

	// Stdout and Stderr receive the tool's streams.
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner creates an ExecRunner wired to the process's own
// standard streams.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run invokes the tool and waits for it to exit. A non-zero exit is
// returned as a model.CLIError with ExitBuildError, carrying the
// tool's own exit code in the message.
func (r *ExecRunner) Run(ctx context.Context, tool string, args []string) error {
	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	// The tool inherits the full environment: it reads the same CI
	// variables the deploy script forwarded implicitly.
	cmd.Env = os.Environ()

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return model.WrapCLIError(model.ExitBuildError,
				fmt.Sprintf("%s exited with code %d", tool, exitErr.ExitCode()), err)
		}
		return model.WrapCLIError(model.ExitBuildError,
			fmt.Sprintf("failed to run %s", tool), err)
	}
	return nil
}
