package adapters

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"nuget-restore/internal/ports"
	"nuget-restore/internal/types"
)

// ProcessRunnerAdapter runs child processes synchronously. Output is always
// captured and additionally copied to Stdout/Stderr when they are set.
type ProcessRunnerAdapter struct {
	Stdout io.Writer
	Stderr io.Writer
}

func NewProcessRunnerAdapter(stdout io.Writer, stderr io.Writer) ProcessRunnerAdapter {
	return ProcessRunnerAdapter{Stdout: stdout, Stderr: stderr}
}

func (a ProcessRunnerAdapter) Run(ctx context.Context, spec types.ProcessSpec) (types.ExecResult, error) {
	if spec.Path == "" {
		return types.ExecResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("executable path is empty")
	}
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	if spec.Env != nil {
		cmd.Env = spec.Env
	}
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = teeTo(&stdout, a.Stdout)
	cmd.Stderr = teeTo(&stderr, a.Stderr)
	err := cmd.Run()
	result := types.ExecResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to run " + spec.Path).
			WithCause(err)
	}
	return result, nil
}

func teeTo(capture *bytes.Buffer, out io.Writer) io.Writer {
	if out == nil {
		return capture
	}
	return io.MultiWriter(capture, out)
}

var _ ports.ProcessRunnerPort = ProcessRunnerAdapter{}
