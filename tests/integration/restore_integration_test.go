package integration

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nuget-restore/internal/adapters"
	"nuget-restore/internal/app"
	"nuget-restore/tests/testutil"
)

type restoreFixture struct {
	service   app.Service
	request   app.RestoreRequest
	reporter  *bytes.Buffer
	capture   string
	tempRoot  string
	workspace string
}

func newRestoreFixture(t *testing.T, files ...string) restoreFixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake nuget is a shell script")
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer pipeline-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"locationMappings":[`+
			`{"accessMappingMoniker":"HostGuidAccessMapping","location":"https://contoso.pkgs.example.test/"},`+
			`{"accessMappingMoniker":"PublicAccessMapping","location":"https://pkgs.example.test/contoso/"}]}`)
	}))
	t.Cleanup(server.Close)

	toolDir := t.TempDir()
	nuget := testutil.InstallExecutable(t, "fake-nuget.sh", toolDir, "nuget")
	workspace := t.TempDir()
	testutil.WriteFiles(t, workspace, files...)
	capture := filepath.Join(t.TempDir(), "capture")
	tempRoot := t.TempDir()
	reporter := &bytes.Buffer{}

	service := app.NewService(5)
	service.Config = adapters.NewNuGetConfigAdapter(tempRoot)
	service.Runner = adapters.NewProcessRunnerAdapter(nil, nil)
	service.Reporter = adapters.NewPipelineReporterAdapter(reporter)
	service.Environ = func() []string {
		return append(os.Environ(), "RESTORE_CAPTURE="+capture)
	}

	return restoreFixture{
		service: service,
		request: app.RestoreRequest{
			NuGetPath:        nuget,
			Solution:         "**/packages.config",
			WorkingDirectory: workspace,
			Verbosity:        "-",
			SelectOrConfig:   "select",
			Feed:             "shared",
			IncludeNuGetOrg:  true,
			AccessToken:      "pipeline-token",
			CollectionURI:    server.URL,
		},
		reporter:  reporter,
		capture:   capture,
		tempRoot:  tempRoot,
		workspace: workspace,
	}
}

func (f restoreFixture) targets(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(f.capture + ".targets")
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Fields(string(data))
}

func (f restoreFixture) assertTempRootEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(f.tempRoot, "nuget-restore"))
	if os.IsNotExist(err) {
		return
	}
	require.NoError(t, err)
	assert.Empty(t, entries, "ephemeral configs must be removed")
}

func TestRestoreSelectModeEndToEnd(t *testing.T) {
	f := newRestoreFixture(t, "src/app/packages.config", "src/lib/packages.config")

	require.NoError(t, f.service.Run(t.Context(), f.request))

	want := []string{
		filepath.Join(f.workspace, "src", "app", "packages.config"),
		filepath.Join(f.workspace, "src", "lib", "packages.config"),
	}
	if diff := cmp.Diff(want, f.targets(t)); diff != "" {
		t.Fatalf("unexpected restore targets (-want +got):\n%s", diff)
	}
	config, err := os.ReadFile(f.capture + ".config")
	require.NoError(t, err)
	assert.Contains(t, string(config), "https://pkgs.example.test/contoso/_packaging/shared/nuget/v3/index.json")
	assert.Contains(t, string(config), "https://api.nuget.org/v3/index.json")
	assert.Contains(t, string(config), "pipeline-token")

	env, err := os.ReadFile(f.capture + ".env")
	require.NoError(t, err)
	assert.Equal(t, "extensions_disabled=true", strings.TrimSpace(string(env)))
	assert.Contains(t, f.reporter.String(), "##vso[task.complete result=Succeeded;]")
	f.assertTempRootEmpty(t)
}

func TestRestoreConfigModeEndToEnd(t *testing.T) {
	f := newRestoreFixture(t, "packages.config")
	userConfig := filepath.Join(f.workspace, "nuget.config")
	original, err := os.ReadFile(testutil.TestData(t, "nuget.config"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(userConfig, original, 0644))
	f.request.SelectOrConfig = "config"
	f.request.NuGetConfigPath = userConfig

	require.NoError(t, f.service.Run(t.Context(), f.request))

	config, err := os.ReadFile(f.capture + ".config")
	require.NoError(t, err)
	assert.Contains(t, string(config), "packageSourceCredentials")
	assert.NotContains(t, string(config), "api.nuget.org")
	current, err := os.ReadFile(userConfig)
	require.NoError(t, err)
	assert.Equal(t, string(original), string(current))
	f.assertTempRootEmpty(t)
}

func TestRestoreStopsOnFailingFile(t *testing.T) {
	f := newRestoreFixture(t, "a/packages.config", "broken/packages.config", "c/packages.config")
	f.request.BuildIdentityDisplayName = "Contoso Build Service"
	f.request.BuildIdentityAccount = "contoso"

	err := f.service.Run(t.Context(), f.request)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit code(1)")
	assert.Len(t, f.targets(t), 2)

	out := f.reporter.String()
	assert.Contains(t, out, `##vso[telemetry.publish area=Packaging;feature=NuGetCommand;]{"ExitCode":1}`)
	assert.Contains(t, out, "##vso[task.logissue type=warning;]For internal feeds")
	assert.Contains(t, out, "##vso[task.complete result=Failed;]")
	f.assertTempRootEmpty(t)
}

func TestRestoreFallsBackWhenLocationLookupFails(t *testing.T) {
	f := newRestoreFixture(t, "packages.config")
	f.request.AccessToken = "wrong-token"
	f.request.Feed = ""

	require.NoError(t, f.service.Run(t.Context(), f.request))
	config, err := os.ReadFile(f.capture + ".config")
	require.NoError(t, err)
	assert.Contains(t, string(config), "api.nuget.org")
	assert.NotContains(t, string(config), "packageSourceCredentials")
}
