package core

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"nuget-restore/internal/types"
)

// quirkRanges maps nuget versions to the quirks they exhibit. Revision
// numbers are ignored.
var quirkRanges = []struct {
	quirk      types.Quirk
	constraint string
}{
	{types.QuirkNoCredentialProvider, "< 3.2.0"},
	{types.QuirkNoCredentialConfig, "< 3.3.0"},
	{types.QuirkNoTfsOnPremAuthCredentialProvider, "< 3.5.0"},
	{types.QuirkNoTfsOnPremAuthConfig, "< 3.5.0"},
}

var hostedServiceSuffixes = []string{
	".visualstudio.com",
	".vsallin.net",
}

// DetectQuirks derives the quirk set of a nuget executable from its version.
func DetectQuirks(ctx context.Context, version types.VersionInfo) (types.QuirkSet, error) {
	if version.Major < 0 || version.Minor < 0 || version.Patch < 0 {
		return types.QuirkSet{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid nuget version %s", version))
	}
	current := semver.New(uint64(version.Major), uint64(version.Minor), uint64(version.Patch), "", "")
	var quirks []types.Quirk
	for _, entry := range quirkRanges {
		constraint, err := semver.NewConstraint(entry.constraint)
		if err != nil {
			return types.QuirkSet{}, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("invalid quirk version range").
				WithCause(err)
		}
		if constraint.Check(current) {
			quirks = append(quirks, entry.quirk)
		}
	}
	set := types.NewQuirkSet(quirks...)
	log.Ctx(ctx).Debug().
		Str("version", version.String()).
		Str("quirks", set.String()).
		Msg("nuget quirks detected")
	return set, nil
}

// IsOnPremises reports whether a collection URI points at a self-hosted
// server rather than the hosted service.
func IsOnPremises(collectionURI string) bool {
	parsed, err := url.Parse(strings.TrimSpace(collectionURI))
	if err != nil || parsed.Host == "" {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "dev.azure.com" {
		return false
	}
	for _, suffix := range hostedServiceSuffixes {
		if strings.HasSuffix(host, suffix) {
			return false
		}
	}
	return true
}

func CredentialProviderEnabled(ctx context.Context, quirks types.QuirkSet, onPremises bool) bool {
	enabled := quirks.SupportsCredentialProvider(onPremises)
	event := log.Ctx(ctx).Debug().Bool("on_premises", onPremises)
	if quirks.Has(types.QuirkNoCredentialProvider) {
		event = event.Str("reason", "nuget version does not support credential providers")
	} else if !enabled {
		event = event.Str("reason", "nuget version does not support credential providers for on-premises servers")
	}
	event.Bool("enabled", enabled).Msg("credential provider support")
	return enabled
}

func CredentialConfigEnabled(ctx context.Context, quirks types.QuirkSet, onPremises bool) bool {
	enabled := quirks.SupportsCredentialConfig(onPremises)
	event := log.Ctx(ctx).Debug().Bool("on_premises", onPremises)
	if quirks.Has(types.QuirkNoCredentialConfig) {
		event = event.Str("reason", "nuget version does not support clear text credentials in config")
	} else if !enabled {
		event = event.Str("reason", "nuget version does not support config credentials for on-premises servers")
	}
	event.Bool("enabled", enabled).Msg("credential config support")
	return enabled
}
