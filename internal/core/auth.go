package core

import (
	"context"
	"path/filepath"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog/log"

	"nuget-restore/internal/types"
)

type AuthInput struct {
	URIPrefixes []string
	// ExtraURIPrefixes is a semicolon separated list appended to the
	// discovered prefixes. Diagnostic use only.
	ExtraURIPrefixes       string
	AccessToken            string
	External               []types.ExternalAuth
	Quirks                 types.QuirkSet
	OnPremises             bool
	CredentialProviderPath string
}

// BuildAuthContext decides how nuget authenticates against internal feeds
// and how its environment is shaped. At most one of the credential provider
// and the credential config is selected.
func BuildAuthContext(ctx context.Context, in AuthInput) (types.AuthenticationDescriptor, types.ExecutionEnvironment) {
	logger := log.Ctx(ctx)
	providerSupported := CredentialProviderEnabled(ctx, in.Quirks, in.OnPremises)
	configSupported := CredentialConfigEnabled(ctx, in.Quirks, in.OnPremises)
	if providerSupported && in.CredentialProviderPath == "" {
		logger.Debug().Msg("credential provider is supported but none was found")
	}
	useProvider := providerSupported && in.CredentialProviderPath != ""
	useConfig := configSupported && !useProvider

	prefixes := append([]string{}, in.URIPrefixes...)
	logger.Debug().Strs("prefixes", prefixes).Msg("discovered url prefixes")
	if extra := splitList(in.ExtraURIPrefixes, ";"); len(extra) > 0 {
		prefixes = append(prefixes, extra...)
		logger.Debug().Strs("prefixes", prefixes).Msg("all url prefixes")
	}

	desc := types.AuthenticationDescriptor{
		Internal: types.InternalAuth{
			URIPrefixes:           prefixes,
			AccessToken:           in.AccessToken,
			UseCredentialProvider: useProvider,
			UseCredentialConfig:   useConfig,
		},
		External: in.External,
	}
	mode := desc.AuthMode()
	assert.NotEmpty(ctx, string(mode), "credential provider and credential config are mutually exclusive")

	env := types.ExecutionEnvironment{ExtensionsDisabled: true}
	if useProvider {
		env.CredentialProviderFolder = filepath.Dir(in.CredentialProviderPath)
	}
	if mode == types.AuthModeNone {
		logger.Warn().Msg("no credential mechanism is available for internal feeds; nuget will rely on ambient credentials")
	}
	logger.Debug().
		Str("mode", string(mode)).
		Int("external_endpoints", len(in.External)).
		Msg("auth context built")
	return desc, env
}

func splitList(value string, sep string) []string {
	var items []string
	for _, item := range strings.Split(value, sep) {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
