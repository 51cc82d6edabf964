package app

import "nuget-restore/internal/types"

type RestoreRequest struct {
	NuGetPath                 string
	Solution                  string
	UseLegacyFind             bool
	WorkingDirectory          string
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
}

type RestoreResult struct {
	Files       []string
	ConfigFile  string
	URIPrefixes []string
	AuthMode    types.AuthMode
	Version     types.VersionInfo
}
