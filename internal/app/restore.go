package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"nuget-restore/internal/core"
	"nuget-restore/internal/ports"
	"nuget-restore/internal/types"
)

// Run restores packages and reports the outcome to the pipeline. The
// returned error is the one that failed the run.
func (s Service) Run(ctx context.Context, req RestoreRequest) error {
	result, err := s.Restore(ctx, req)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("restore failed")
		s.Reporter.Error(err.Error())
		if hint := buildIdentityHint(req); hint != "" {
			s.Reporter.Warning(hint)
		}
		s.Reporter.Complete(types.TaskResultFailed, message(msgPackagesFailedToInstall))
		return err
	}
	log.Ctx(ctx).Info().Int("files", len(result.Files)).Msg("restore completed")
	s.Reporter.Complete(types.TaskResultSucceeded, message(msgPackagesInstalled))
	return nil
}

// Restore runs nuget restore for every matched file. The ephemeral config is
// cleaned up exactly once, before Restore returns, whatever the outcome.
func (s Service) Restore(ctx context.Context, req RestoreRequest) (result RestoreResult, err error) {
	nugetPath := strings.TrimSpace(req.NuGetPath)
	if nugetPath == "" {
		return RestoreResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("nuget path is required")
	}
	mode, err := parseFeedSelectionMode(req.SelectOrConfig)
	if err != nil {
		return RestoreResult{}, err
	}
	logger := log.Ctx(ctx)

	location := s.resolveFeedLocations(ctx, req.CollectionURI, req.AccessToken)

	workingDir, err := resolveWorkingDirectory(req.WorkingDirectory)
	if err != nil {
		return RestoreResult{}, err
	}
	files, err := s.findFiles(ctx, req, workingDir)
	if err != nil {
		return RestoreResult{}, err
	}
	packagesDir := strings.TrimSpace(req.PackagesDirectory)
	if packagesDir != "" && !filepath.IsAbs(packagesDir) {
		packagesDir = filepath.Join(workingDir, packagesDir)
	}

	version, err := s.Versions.ReadVersion(ctx, nugetPath)
	if err != nil {
		return RestoreResult{}, err
	}
	logger.Debug().Str("version", version.String()).Msg("getting nuget quirks")
	quirks, err := core.DetectQuirks(ctx, version)
	if err != nil {
		return RestoreResult{}, err
	}

	logger.Debug().Msg("setting up auth")
	external, err := s.Endpoints.Load(req.ExternalEndpoints, req.ExternalEndpointsFile)
	if err != nil {
		return RestoreResult{}, err
	}
	auth, env := core.BuildAuthContext(ctx, core.AuthInput{
		URIPrefixes:            location.URIPrefixes,
		ExtraURIPrefixes:       req.ExtraURLPrefixes,
		AccessToken:            req.AccessToken,
		External:               external,
		Quirks:                 quirks,
		OnPremises:             core.IsOnPremises(req.CollectionURI),
		CredentialProviderPath: s.CredentialProviders.Locate(ctx, nugetPath, req.CredentialProviderPath),
	})

	logger.Debug().Msg("setting up sources")
	userConfig := ""
	if mode == types.FeedSelectionConfig {
		userConfig = strings.TrimSpace(req.NuGetConfigPath)
	}
	handle, err := s.Config.Prepare(ctx, ports.ConfigPrepareRequest{
		UserConfigPath: userConfig,
		Mode:           mode,
		Auth:           auth,
	})
	if err != nil {
		return RestoreResult{}, err
	}
	defer func() {
		if cleanupErr := handle.Cleanup(); cleanupErr != nil {
			logger.Warn().Err(cleanupErr).Msg("failed to clean up temp nuget config")
			if err == nil {
				err = cleanupErr
			}
		}
	}()

	if mode == types.FeedSelectionSelect {
		sources, err := core.SelectSources(ctx, core.SourceSelection{
			Feed:            req.Feed,
			IncludeNuGetOrg: req.IncludeNuGetOrg,
			DefaultURI:      location.DefaultURI,
			Version:         version,
		})
		if err != nil {
			return RestoreResult{}, err
		}
		if err := handle.AddSources(ctx, sources); err != nil {
			return RestoreResult{}, err
		}
	}
	if err := handle.WriteCredentials(ctx); err != nil {
		return RestoreResult{}, err
	}

	options := types.RestoreOptions{
		ExecutablePath:            nugetPath,
		ConfigFile:                handle.ResolvedConfigPath(),
		NoCache:                   req.NoCache,
		DisableParallelProcessing: req.DisableParallelProcessing,
		Verbosity:                 req.Verbosity,
		PackagesDirectory:         packagesDir,
		Environment:               env,
		Auth:                      auth,
	}
	for _, file := range files {
		if _, err := s.restorePackages(ctx, file, options); err != nil {
			return RestoreResult{}, err
		}
	}
	return RestoreResult{
		Files:       files,
		ConfigFile:  options.ConfigFile,
		URIPrefixes: auth.Internal.URIPrefixes,
		AuthMode:    auth.AuthMode(),
		Version:     version,
	}, nil
}

func parseFeedSelectionMode(value string) (types.FeedSelectionMode, error) {
	switch types.FeedSelectionMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", types.FeedSelectionSelect:
		return types.FeedSelectionSelect, nil
	case types.FeedSelectionConfig:
		return types.FeedSelectionConfig, nil
	default:
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported feed selection mode %q (expected select or config)", value))
	}
}

func resolveWorkingDirectory(value string) (string, error) {
	if dir := strings.TrimSpace(value); dir != "" {
		return filepath.Abs(dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to resolve working directory").
			WithCause(err)
	}
	return cwd, nil
}

func (s Service) findFiles(ctx context.Context, req RestoreRequest, workingDir string) ([]string, error) {
	pattern := strings.TrimSpace(req.Solution)
	assert.NotEmpty(ctx, workingDir, "working directory must be resolved")
	if pattern == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("solution pattern is required")
	}
	files, err := s.Matcher.Match(pattern, workingDir, req.UseLegacyFind)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil || !info.Mode().IsRegular() {
			builder := errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(message(msgNotARegularFile, file))
			if err != nil {
				builder = builder.WithCause(err)
			}
			return nil, builder
		}
	}
	if len(files) == 0 {
		log.Ctx(ctx).Warn().Msg(message(msgNoFilesMatched, pattern))
	}
	return files, nil
}
