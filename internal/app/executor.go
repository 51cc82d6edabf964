package app

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"

	"nuget-restore/internal/core"
	"nuget-restore/internal/types"
)

const telemetryArea = "Packaging"
const telemetryFeature = "NuGetCommand"

// restorePackages runs nuget restore for one file. A non-zero exit code is
// recorded as telemetry and returned as a *NuGetExitError; there are no
// retries.
func (s Service) restorePackages(ctx context.Context, file string, options types.RestoreOptions) (types.ExecResult, error) {
	path, args := core.ToolCommand(s.goos(), options.ExecutablePath, core.RestoreArguments(file, options))
	env, err := core.ToolEnvironment(s.environ(), options)
	if err != nil {
		return types.ExecResult{}, err
	}
	log.Ctx(ctx).Info().Str("file", file).Msg("restoring packages")
	log.Ctx(ctx).Debug().Str("path", path).Strs("args", args).Msg("running nuget")
	result, err := s.Runner.Run(ctx, types.ProcessSpec{
		Path: path,
		Args: args,
		Dir:  filepath.Dir(file),
		Env:  env,
	})
	if err != nil {
		return result, err
	}
	if result.ExitCode != 0 {
		s.Reporter.Telemetry(telemetryArea, telemetryFeature, map[string]any{"ExitCode": result.ExitCode})
		return result, &NuGetExitError{File: file, ExitCode: result.ExitCode, Stderr: result.Stderr}
	}
	return result, nil
}

func (s Service) goos() string {
	if s.GOOS != "" {
		return s.GOOS
	}
	return runtime.GOOS
}

func (s Service) environ() []string {
	if s.Environ != nil {
		return s.Environ()
	}
	return os.Environ()
}
