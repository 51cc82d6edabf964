package cli

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"nuget-restore/internal/app"
)

type restoreOptions struct {
	NuGetPath                 string
	Solution                  string
	LegacyFind                bool
	WorkingDir                string
	NoCache                   bool
	DisableParallelProcessing bool
	Verbosity                 string
	PackagesDirectory         string
	SelectOrConfig            string
	NuGetConfigPath           string
	Feed                      string
	IncludeNuGetOrg           bool
	AccessToken               string
	ExternalEndpoints         []string
	ExternalEndpointsFile     string
	CollectionURI             string
	ExtraURLPrefixes          string
	CredentialProviderPath    string
	BuildIdentityDisplayName  string
	BuildIdentityAccount      string
	LocationTimeoutSec        int
}

func newRestoreCommand() *cobra.Command {
	opts := restoreOptions{}
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore NuGet packages for matching solution and packages.config files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRestore(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.NuGetPath, "nuget-path", "", "Path to nuget.exe")
	cmd.Flags().StringVar(&opts.Solution, "solution", "**/*.sln", "Solution, packages.config or project.json pattern(s)")
	cmd.Flags().BoolVar(&opts.LegacyFind, "legacy-find", false, "Use ';' separated +:/-: patterns")
	cmd.Flags().StringVar(&opts.WorkingDir, "working-dir", "", "Directory patterns are resolved against (defaults to cwd)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Pass -NoCache to nuget")
	cmd.Flags().BoolVar(&opts.DisableParallelProcessing, "disable-parallel-processing", false, "Pass -DisableParallelProcessing to nuget")
	cmd.Flags().StringVar(&opts.Verbosity, "verbosity", "-", "nuget verbosity (quiet, normal, detailed; '-' leaves it unset)")
	cmd.Flags().StringVar(&opts.PackagesDirectory, "packages-directory", "", "Destination folder for packages")
	cmd.Flags().StringVar(&opts.SelectOrConfig, "select-or-config", "select", "Feed selection mode: select or config")
	cmd.Flags().StringVar(&opts.NuGetConfigPath, "nuget-config-path", "", "nuget.config used in config mode")
	cmd.Flags().StringVar(&opts.Feed, "feed", "", "Feed name or project/feed used in select mode")
	cmd.Flags().BoolVar(&opts.IncludeNuGetOrg, "include-nuget-org", false, "Add nuget.org as a source in select mode")
	cmd.Flags().StringVar(&opts.AccessToken, "access-token", "", "Pipeline access token for internal feeds")
	cmd.Flags().StringSliceVar(&opts.ExternalEndpoints, "external-endpoints", nil, "Service connection ids for external feeds")
	cmd.Flags().StringVar(&opts.ExternalEndpointsFile, "external-endpoints-file", "", "YAML file listing external feed credentials")
	cmd.Flags().StringVar(&opts.CollectionURI, "collection-uri", "", "Team Foundation collection URI")
	cmd.Flags().StringVar(&opts.ExtraURLPrefixes, "extra-url-prefixes", "", "Extra ';' separated internal URI prefixes")
	cmd.Flags().StringVar(&opts.CredentialProviderPath, "credential-provider-path", "", "Credential provider executable")
	cmd.Flags().StringVar(&opts.BuildIdentityDisplayName, "build-identity-display-name", "", "Build identity display name for failure hints")
	cmd.Flags().StringVar(&opts.BuildIdentityAccount, "build-identity-account", "", "Build identity account for failure hints")
	cmd.Flags().IntVar(&opts.LocationTimeoutSec, "location-timeout", 10, "Location service timeout in seconds")

	_ = viper.BindPFlag("nuget_path", cmd.Flags().Lookup("nuget-path"))
	_ = viper.BindPFlag("solution", cmd.Flags().Lookup("solution"))
	_ = viper.BindPFlag("legacy_find", cmd.Flags().Lookup("legacy-find"))
	_ = viper.BindPFlag("working_dir", cmd.Flags().Lookup("working-dir"))
	_ = viper.BindPFlag("no_cache", cmd.Flags().Lookup("no-cache"))
	_ = viper.BindPFlag("disable_parallel_processing", cmd.Flags().Lookup("disable-parallel-processing"))
	_ = viper.BindPFlag("verbosity", cmd.Flags().Lookup("verbosity"))
	_ = viper.BindPFlag("packages_directory", cmd.Flags().Lookup("packages-directory"))
	_ = viper.BindPFlag("select_or_config", cmd.Flags().Lookup("select-or-config"))
	_ = viper.BindPFlag("nuget_config_path", cmd.Flags().Lookup("nuget-config-path"))
	_ = viper.BindPFlag("feed", cmd.Flags().Lookup("feed"))
	_ = viper.BindPFlag("include_nuget_org", cmd.Flags().Lookup("include-nuget-org"))
	_ = viper.BindPFlag("access_token", cmd.Flags().Lookup("access-token"))
	_ = viper.BindPFlag("external_endpoints", cmd.Flags().Lookup("external-endpoints"))
	_ = viper.BindPFlag("external_endpoints_file", cmd.Flags().Lookup("external-endpoints-file"))
	_ = viper.BindPFlag("collection_uri", cmd.Flags().Lookup("collection-uri"))
	_ = viper.BindPFlag("extra_url_prefixes", cmd.Flags().Lookup("extra-url-prefixes"))
	_ = viper.BindPFlag("credential_provider_path", cmd.Flags().Lookup("credential-provider-path"))
	_ = viper.BindPFlag("build_identity_display_name", cmd.Flags().Lookup("build-identity-display-name"))
	_ = viper.BindPFlag("build_identity_account", cmd.Flags().Lookup("build-identity-account"))
	_ = viper.BindPFlag("location_timeout", cmd.Flags().Lookup("location-timeout"))
	return cmd
}

func runRestore(ctx context.Context, cmd *cobra.Command, opts restoreOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = log.Logger.WithContext(ctx)
	service := app.NewService(resolveInt(cmd, opts.LocationTimeoutSec, "location_timeout", "location-timeout"))
	return service.Run(ctx, restoreRequest(cmd, opts))
}

func restoreRequest(cmd *cobra.Command, opts restoreOptions) app.RestoreRequest {
	return app.RestoreRequest{
		NuGetPath:                 resolveString(cmd, opts.NuGetPath, "nuget_path", "nuget-path"),
		Solution:                  resolveString(cmd, opts.Solution, "solution", "solution"),
		UseLegacyFind:             resolveBool(cmd, opts.LegacyFind, "legacy_find", "legacy-find"),
		WorkingDirectory:          resolveString(cmd, opts.WorkingDir, "working_dir", "working-dir"),
		NoCache:                   resolveBool(cmd, opts.NoCache, "no_cache", "no-cache"),
		DisableParallelProcessing: resolveBool(cmd, opts.DisableParallelProcessing, "disable_parallel_processing", "disable-parallel-processing"),
		Verbosity:                 resolveString(cmd, opts.Verbosity, "verbosity", "verbosity"),
		PackagesDirectory:         resolveString(cmd, opts.PackagesDirectory, "packages_directory", "packages-directory"),
		SelectOrConfig:            resolveString(cmd, opts.SelectOrConfig, "select_or_config", "select-or-config"),
		NuGetConfigPath:           resolveString(cmd, opts.NuGetConfigPath, "nuget_config_path", "nuget-config-path"),
		Feed:                      resolveString(cmd, opts.Feed, "feed", "feed"),
		IncludeNuGetOrg:           resolveBool(cmd, opts.IncludeNuGetOrg, "include_nuget_org", "include-nuget-org"),
		AccessToken:               resolveString(cmd, opts.AccessToken, "access_token", "access-token"),
		ExternalEndpoints:         resolveStrings(cmd, opts.ExternalEndpoints, "external_endpoints", "external-endpoints"),
		ExternalEndpointsFile:     resolveString(cmd, opts.ExternalEndpointsFile, "external_endpoints_file", "external-endpoints-file"),
		CollectionURI:             resolveString(cmd, opts.CollectionURI, "collection_uri", "collection-uri"),
		ExtraURLPrefixes:          resolveString(cmd, opts.ExtraURLPrefixes, "extra_url_prefixes", "extra-url-prefixes"),
		CredentialProviderPath:    resolveString(cmd, opts.CredentialProviderPath, "credential_provider_path", "credential-provider-path"),
		BuildIdentityDisplayName:  resolveString(cmd, opts.BuildIdentityDisplayName, "build_identity_display_name", "build-identity-display-name"),
		BuildIdentityAccount:      resolveString(cmd, opts.BuildIdentityAccount, "build_identity_account", "build-identity-account"),
	}
}
