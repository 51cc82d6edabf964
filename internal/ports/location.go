package ports

import (
	"context"

	"nuget-restore/internal/types"
)

// PackagingLocationPort looks up the base URIs of the packaging service
// behind a collection.
type PackagingLocationPort interface {
	PackagingURIs(ctx context.Context, collectionURI string, accessToken string) (types.PackagingLocation, error)
}
