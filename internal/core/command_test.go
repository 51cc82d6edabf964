package core

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nuget-restore/internal/types"
)

func TestRestoreArgumentsMinimal(t *testing.T) {
	args := RestoreArguments("/src/app.sln", types.RestoreOptions{})
	want := []string{"restore", "/src/app.sln", "-NonInteractive"}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Fatalf("unexpected args (-want +got):\n%s", diff)
	}
}

func TestRestoreArgumentsAllFlags(t *testing.T) {
	args := RestoreArguments("/src/app.sln", types.RestoreOptions{
		ConfigFile:                "/tmp/nuget.config",
		NoCache:                   true,
		DisableParallelProcessing: true,
		Verbosity:                 "Detailed",
		PackagesDirectory:         "/src/packages",
	})
	want := []string{
		"restore", "/src/app.sln",
		"-PackagesDirectory", "/src/packages",
		"-NoCache",
		"-DisableParallelProcessing",
		"-Verbosity", "Detailed",
		"-NonInteractive",
		"-ConfigFile", "/tmp/nuget.config",
	}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Fatalf("unexpected args (-want +got):\n%s", diff)
	}
}

func TestRestoreArgumentsSkipsVerbosityPlaceholder(t *testing.T) {
	args := RestoreArguments("a.csproj", types.RestoreOptions{Verbosity: "-"})
	assert.NotContains(t, args, "-Verbosity")
}

func TestToolCommand(t *testing.T) {
	path, args := ToolCommand("linux", "/tools/nuget.exe", []string{"restore"})
	assert.Equal(t, "mono", path)
	assert.Equal(t, []string{"/tools/nuget.exe", "restore"}, args)

	path, args = ToolCommand("windows", `C:\tools\nuget.exe`, []string{"restore"})
	assert.Equal(t, `C:\tools\nuget.exe`, path)
	assert.Equal(t, []string{"restore"}, args)

	path, _ = ToolCommand("linux", "/usr/local/bin/nuget", nil)
	assert.Equal(t, "/usr/local/bin/nuget", path)
}

func envMap(env []string) map[string]string {
	values := map[string]string{}
	for _, entry := range env {
		key, value, _ := strings.Cut(entry, "=")
		values[key] = value
	}
	return values
}

func TestToolEnvironmentWithCredentialProvider(t *testing.T) {
	options := types.RestoreOptions{
		Environment: types.ExecutionEnvironment{CredentialProviderFolder: "/opt/provider", ExtensionsDisabled: true},
		Auth: types.AuthenticationDescriptor{
			Internal: types.InternalAuth{
				URIPrefixes:           []string{"https://a/", "https://b/"},
				AccessToken:           "token",
				UseCredentialProvider: true,
			},
			External: []types.ExternalAuth{{EndpointURI: "https://ext/", Username: "user", Secret: "pw"}},
		},
	}
	env, err := ToolEnvironment([]string{"PATH=/bin", EnvExtensionsDisabled + "=false"}, options)
	require.NoError(t, err)
	values := envMap(env)
	assert.Equal(t, "/bin", values["PATH"])
	assert.Equal(t, "/opt/provider", values[EnvCredentialProvidersPath])
	assert.Equal(t, "https://a/;https://b/", values[EnvURIPrefixes])
	assert.Equal(t, "token", values[EnvAccessToken])
	assert.Equal(t, "true", values[EnvExtensionsDisabled])

	var endpoints externalFeedEndpoints
	require.NoError(t, json.Unmarshal([]byte(values[EnvExternalFeedEndpoints]), &endpoints))
	require.Len(t, endpoints.EndpointCredentials, 1)
	assert.Equal(t, "https://ext/", endpoints.EndpointCredentials[0].Endpoint)

	count := 0
	for _, entry := range env {
		if strings.HasPrefix(entry, EnvExtensionsDisabled+"=") {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestToolEnvironmentWithoutCredentialProvider(t *testing.T) {
	env, err := ToolEnvironment(nil, types.RestoreOptions{
		Environment: types.ExecutionEnvironment{ExtensionsDisabled: true},
		Auth: types.AuthenticationDescriptor{
			Internal: types.InternalAuth{AccessToken: "token", UseCredentialConfig: true},
		},
	})
	require.NoError(t, err)
	values := envMap(env)
	assert.NotContains(t, values, EnvCredentialProvidersPath)
	assert.NotContains(t, values, EnvAccessToken)
	assert.Equal(t, "true", values[EnvExtensionsDisabled])
}
