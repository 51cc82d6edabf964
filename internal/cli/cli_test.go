package cli

import (
	"fmt"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nuget-restore/internal/app"
)

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "restore")
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
}

func TestRestoreCommandFlags(t *testing.T) {
	cmd := newRestoreCommand()
	flags := []string{
		"nuget-path", "solution", "legacy-find", "working-dir",
		"no-cache", "disable-parallel-processing", "verbosity",
		"packages-directory", "select-or-config", "nuget-config-path",
		"feed", "include-nuget-org", "access-token",
		"external-endpoints", "external-endpoints-file",
		"collection-uri", "extra-url-prefixes", "credential-provider-path",
		"build-identity-display-name", "build-identity-account",
		"location-timeout",
	}
	for _, name := range flags {
		flag := cmd.Flags().Lookup(name)
		assert.NotNil(t, flag, "missing flag: %s", name)
	}
}

func TestRestoreCommandDefaults(t *testing.T) {
	cmd := newRestoreCommand()
	assert.Equal(t, "-", cmd.Flags().Lookup("verbosity").DefValue)
	assert.Equal(t, "select", cmd.Flags().Lookup("select-or-config").DefValue)
	assert.Equal(t, "10", cmd.Flags().Lookup("location-timeout").DefValue)
}

func TestRestoreRequestFromFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("nuget-path", "", "")
	cmd.Flags().Bool("no-cache", false, "")
	cmd.Flags().StringSlice("external-endpoints", nil, "")
	require.NoError(t, cmd.Flags().Set("nuget-path", "/tools/nuget.exe"))
	require.NoError(t, cmd.Flags().Set("no-cache", "true"))
	require.NoError(t, cmd.Flags().Set("external-endpoints", "a,b"))

	req := restoreRequest(cmd, restoreOptions{
		NuGetPath:         "/tools/nuget.exe",
		NoCache:           true,
		ExternalEndpoints: []string{"a", "b"},
	})
	assert.Equal(t, "/tools/nuget.exe", req.NuGetPath)
	assert.True(t, req.NoCache)
	assert.Equal(t, []string{"a", "b"}, req.ExternalEndpoints)
}

func TestPipelineVariablesFeedSettings(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("SYSTEM_TEAMFOUNDATIONCOLLECTIONURI", "https://dev.azure.com/contoso/")
	t.Setenv("SYSTEM_ACCESSTOKEN", "token")
	bindPipelineVariables()

	assert.Equal(t, "https://dev.azure.com/contoso/", viper.GetString("collection_uri"))
	assert.Equal(t, "token", viper.GetString("access_token"))
}

func TestPrefixedVariableWinsOverPipelineVariable(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("SYSTEM_ACCESSTOKEN", "agent-token")
	t.Setenv("NUGET_RESTORE_ACCESS_TOKEN", "explicit-token")
	bindPipelineVariables()

	assert.Equal(t, "explicit-token", viper.GetString("access_token"))
}

// ---------- Helper function tests ----------

func TestResolveString(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *cobra.Command
		value    string
		expected string
	}{
		{
			name:     "nil cmd with value returns value",
			cmd:      nil,
			value:    "explicit",
			expected: "explicit",
		},
		{
			name:     "nil cmd empty value returns empty",
			cmd:      nil,
			value:    "",
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveString(tt.cmd, tt.value, "test_key", "test-flag")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveStrings(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *cobra.Command
		values   []string
		expected []string
	}{
		{
			name:     "nil cmd with values returns values",
			cmd:      nil,
			values:   []string{"a", "b"},
			expected: []string{"a", "b"},
		},
		{
			name:     "nil cmd empty returns nil",
			cmd:      nil,
			values:   nil,
			expected: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveStrings(tt.cmd, tt.values, "test_key", "test-flag")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveBool(t *testing.T) {
	got := resolveBool(nil, true, "test_key", "test-flag")
	assert.True(t, got)

	got = resolveBool(nil, false, "test_key", "test-flag")
	assert.False(t, got)
}

func TestResolveInt(t *testing.T) {
	got := resolveInt(nil, 42, "test_key", "test-flag")
	assert.Equal(t, 42, got)
}

func TestFlagChanged(t *testing.T) {
	assert.False(t, flagChanged(nil, "anything"), "nil cmd should return false")
	assert.False(t, flagChanged(nil, ""), "nil cmd with empty name")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	assert.False(t, flagChanged(cmd, "myflag"), "unchanged flag")
	assert.False(t, flagChanged(cmd, "nonexistent"), "nonexistent flag")
}

func TestFlagChangedAfterSet(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	require.NoError(t, cmd.Flags().Set("myflag", "val"))
	assert.True(t, flagChanged(cmd, "myflag"))
}

// ---------- Exit code tests ----------

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name: "invalid argument",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("solution pattern is required"),
			expected: 2,
		},
		{
			name: "not found config",
			err: errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("nuget config file not found: nuget.config"),
			expected: 2,
		},
		{
			name: "permission denied",
			err: errbuilder.New().
				WithCode(errbuilder.CodePermissionDenied).
				WithMsg("nope"),
			expected: 3,
		},
		{
			name: "unreadable nuget version",
			err: errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg("unable to read nuget version"),
			expected: 4,
		},
		{
			name:     "nuget exit code",
			err:      &app.NuGetExitError{File: "app.sln", ExitCode: 1, Stderr: "boom"},
			expected: 6,
		},
		{
			name:     "wrapped nuget exit code",
			err:      fmt.Errorf("restore: %w", &app.NuGetExitError{ExitCode: 2}),
			expected: 6,
		},
		{
			name: "internal error mentioning nuget",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("The nuget command failed to start"),
			expected: 5,
		},
		{
			name: "internal error",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to remove temp nuget config"),
			expected: 5,
		},
		{
			name:     "unknown error",
			err:      assert.AnError,
			expected: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exitCodeForError(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name: "errbuilder with msg",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("something broke"),
			expected: "something broke",
		},
		{
			name:     "plain error",
			err:      assert.AnError,
			expected: assert.AnError.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorMessage(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
