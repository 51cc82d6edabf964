package core

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"nuget-restore/internal/types"
)

const (
	NuGetOrgV2URL      = "https://www.nuget.org/api/v2/"
	NuGetOrgV3URL      = "https://api.nuget.org/v3/index.json"
	NuGetOrgSourceName = "NuGetOrg"
)

type SourceSelection struct {
	Feed            string
	IncludeNuGetOrg bool
	DefaultURI      string
	Version         types.VersionInfo
}

// NuGetOrgURL returns the public registry endpoint understood by the given
// nuget version.
func NuGetOrgURL(version types.VersionInfo) string {
	if version.Major < 3 {
		return NuGetOrgV2URL
	}
	return NuGetOrgV3URL
}

// FeedRegistryURL builds the registry URL of an internal feed. A feed of the
// form "project/feed" is scoped to that project.
func FeedRegistryURL(defaultURI string, feed string, version types.VersionInfo) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(defaultURI), "/")
	if base == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("packaging uri is empty")
	}
	feed = strings.Trim(strings.TrimSpace(feed), "/")
	if feed == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("feed name is empty")
	}
	project, name, scoped := strings.Cut(feed, "/")
	if scoped {
		base = base + "/" + url.PathEscape(project)
	} else {
		name = project
	}
	suffix := "nuget/v3/index.json"
	if version.Major < 3 {
		suffix = "nuget/v2"
	}
	return fmt.Sprintf("%s/_packaging/%s/%s", base, url.PathEscape(name), suffix), nil
}

// SelectSources returns the sources chosen in feed-selection mode: the named
// internal feed first, then the public registry.
func SelectSources(ctx context.Context, sel SourceSelection) ([]types.PackageSource, error) {
	var sources []types.PackageSource
	if feed := strings.TrimSpace(sel.Feed); feed != "" {
		feedURL, err := FeedRegistryURL(sel.DefaultURI, feed, sel.Version)
		if err != nil {
			return nil, err
		}
		sources = append(sources, types.PackageSource{
			Name:       feed,
			URI:        feedURL,
			IsInternal: true,
		})
	}
	if sel.IncludeNuGetOrg {
		sources = append(sources, types.PackageSource{
			Name:       NuGetOrgSourceName,
			URI:        NuGetOrgURL(sel.Version),
			IsInternal: false,
		})
	}
	if len(sources) == 0 {
		log.Ctx(ctx).Debug().Msg("no feeds selected")
	}
	return sources, nil
}
