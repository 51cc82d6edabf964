package adapters

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strconv"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"nuget-restore/internal/core"
	"nuget-restore/internal/ports"
	"nuget-restore/internal/shared"
	"nuget-restore/internal/types"
)

var nugetVersionPattern = regexp.MustCompile(`(?i)NuGet Version:\s*(\d+)\.(\d+)(?:\.(\d+))?(?:\.(\d+))?`)

// VersionReaderAdapter reads the version banner printed by "nuget help".
type VersionReaderAdapter struct {
	Runner ports.ProcessRunnerPort
	GOOS   string
}

func NewVersionReaderAdapter(runner ports.ProcessRunnerPort) VersionReaderAdapter {
	return VersionReaderAdapter{Runner: runner, GOOS: runtime.GOOS}
}

func (a VersionReaderAdapter) ReadVersion(ctx context.Context, executablePath string) (types.VersionInfo, error) {
	if _, err := os.Stat(executablePath); err != nil {
		return types.VersionInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("nuget executable not found: %s", executablePath)).
			WithCause(err)
	}
	path, args := core.ToolCommand(a.GOOS, executablePath, []string{"help"})
	result, err := a.Runner.Run(ctx, types.ProcessSpec{Path: path, Args: args})
	if err != nil {
		return types.VersionInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("failed to read nuget version").
			WithCause(err)
	}
	version, ok := parseNuGetVersion(result.Stdout + "\n" + result.Stderr)
	if !ok {
		return types.VersionInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("failed to read nuget version").
			WithCause(shared.CommandError([]byte(result.Stderr), fmt.Errorf("exit code %d: no version banner", result.ExitCode)))
	}
	return version, nil
}

func parseNuGetVersion(output string) (types.VersionInfo, bool) {
	match := nugetVersionPattern.FindStringSubmatch(output)
	if match == nil {
		return types.VersionInfo{}, false
	}
	parts := make([]int, 4)
	for i := range parts {
		if match[i+1] == "" {
			continue
		}
		value, err := strconv.Atoi(match[i+1])
		if err != nil {
			return types.VersionInfo{}, false
		}
		parts[i] = value
	}
	return types.VersionInfo{
		Major:    parts[0],
		Minor:    parts[1],
		Patch:    parts[2],
		Revision: parts[3],
		Raw:      versionDigits(match),
	}, true
}

func versionDigits(match []string) string {
	value := match[1] + "." + match[2]
	for _, part := range match[3:5] {
		if part == "" {
			break
		}
		value += "." + part
	}
	return value
}

var _ ports.VersionReaderPort = VersionReaderAdapter{}
