package ports

import (
	"context"

	"nuget-restore/internal/types"
)

type VersionReaderPort interface {
	ReadVersion(ctx context.Context, executablePath string) (types.VersionInfo, error)
}

// ProcessRunnerPort runs a child process to completion. A non-nil error
// means the process could not be started or waited on; a non-zero exit code
// is reported through the result.
type ProcessRunnerPort interface {
	Run(ctx context.Context, spec types.ProcessSpec) (types.ExecResult, error)
}

type CredentialProviderPort interface {
	// Locate returns the path of the credential provider executable, or an
	// empty string when none is available.
	Locate(ctx context.Context, executablePath string, configuredPath string) string
}
