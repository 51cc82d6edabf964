package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"nuget-restore/internal/types"
)

// resolveFeedLocations never fails: when the location service cannot be
// reached it degrades to the collection URI alone.
func (s Service) resolveFeedLocations(ctx context.Context, collectionURI string, accessToken string) types.PackagingLocation {
	location, err := s.Locations.PackagingURIs(ctx, collectionURI, accessToken)
	if err == nil {
		return location
	}
	log.Ctx(ctx).Debug().Err(err).Msg("unable to get packaging uris, using default collection uri")
	uri := strings.TrimSpace(collectionURI)
	if uri == "" {
		return types.PackagingLocation{}
	}
	return types.PackagingLocation{
		URIPrefixes: []string{uri},
		DefaultURI:  uri,
	}
}
