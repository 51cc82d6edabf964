package core

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"nuget-restore/internal/types"
)

const (
	EnvCredentialProvidersPath = "NUGET_CREDENTIALPROVIDERS_PATH"
	EnvURIPrefixes             = "VSS_NUGET_URI_PREFIXES"
	EnvAccessToken             = "VSS_NUGET_ACCESSTOKEN"
	EnvExternalFeedEndpoints   = "VSS_NUGET_EXTERNAL_FEED_ENDPOINTS"
	EnvExtensionsDisabled      = "NUGET_EXTENSIONS_DISABLED"
)

// verbosityPlaceholder is the pipeline's "not set" value for verbosity.
const verbosityPlaceholder = "-"

// RestoreArguments builds the nuget argument list for restoring one file.
func RestoreArguments(file string, options types.RestoreOptions) []string {
	args := []string{"restore", file}
	if options.PackagesDirectory != "" {
		args = append(args, "-PackagesDirectory", options.PackagesDirectory)
	}
	if options.NoCache {
		args = append(args, "-NoCache")
	}
	if options.DisableParallelProcessing {
		args = append(args, "-DisableParallelProcessing")
	}
	if verbosity := strings.TrimSpace(options.Verbosity); verbosity != "" && verbosity != verbosityPlaceholder {
		args = append(args, "-Verbosity", verbosity)
	}
	args = append(args, "-NonInteractive")
	if options.ConfigFile != "" {
		args = append(args, "-ConfigFile", options.ConfigFile)
	}
	return args
}

// ToolCommand returns the program and arguments that run the executable on
// goos. Managed .exe tools run under mono outside Windows.
func ToolCommand(goos string, executablePath string, args []string) (string, []string) {
	if goos != "windows" && strings.EqualFold(filepath.Ext(executablePath), ".exe") {
		return "mono", append([]string{executablePath}, args...)
	}
	return executablePath, args
}

type externalFeedEndpoints struct {
	EndpointCredentials []externalFeedEndpoint `json:"endpointCredentials"`
}

type externalFeedEndpoint struct {
	Endpoint string `json:"endpoint"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ToolEnvironment layers the credential and extension settings of options
// over base.
func ToolEnvironment(base []string, options types.RestoreOptions) ([]string, error) {
	env := append([]string{}, base...)
	if folder := options.Environment.CredentialProviderFolder; folder != "" && options.Auth.Internal.UseCredentialProvider {
		env = setEnv(env, EnvCredentialProvidersPath, folder)
		env = setEnv(env, EnvURIPrefixes, strings.Join(options.Auth.Internal.URIPrefixes, ";"))
		env = setEnv(env, EnvAccessToken, options.Auth.Internal.AccessToken)
		if len(options.Auth.External) > 0 {
			payload := externalFeedEndpoints{}
			for _, endpoint := range options.Auth.External {
				payload.EndpointCredentials = append(payload.EndpointCredentials, externalFeedEndpoint{
					Endpoint: endpoint.EndpointURI,
					Username: endpoint.Username,
					Password: endpoint.Secret,
				})
			}
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("failed to encode external feed endpoints").
					WithCause(err)
			}
			env = setEnv(env, EnvExternalFeedEndpoints, string(data))
		}
	}
	if options.Environment.ExtensionsDisabled {
		env = setEnv(env, EnvExtensionsDisabled, "true")
	}
	return env, nil
}

func setEnv(env []string, key string, value string) []string {
	prefix := key + "="
	out := env[:0]
	for _, entry := range env {
		if !strings.HasPrefix(entry, prefix) {
			out = append(out, entry)
		}
	}
	return append(out, prefix+value)
}
