package ports

import "nuget-restore/internal/types"

// ExternalEndpointsPort loads credentials for feeds outside the pipeline
// service from service connections.
type ExternalEndpointsPort interface {
	Load(endpointIDs []string, endpointsFile string) ([]types.ExternalAuth, error)
}
