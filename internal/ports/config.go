package ports

import (
	"context"

	"nuget-restore/internal/types"
)

type ConfigPrepareRequest struct {
	UserConfigPath string
	Mode           types.FeedSelectionMode
	Auth           types.AuthenticationDescriptor
}

// NuGetConfigPort prepares the package-source config used by a run.
type NuGetConfigPort interface {
	Prepare(ctx context.Context, req ConfigPrepareRequest) (ConfigHandle, error)
}

// ConfigHandle owns the ephemeral config of one run. Cleanup must be called
// exactly once by the owner and is safe to call again.
type ConfigHandle interface {
	AddSources(ctx context.Context, sources []types.PackageSource) error
	WriteCredentials(ctx context.Context) error
	ResolvedConfigPath() string
	Cleanup() error
}
