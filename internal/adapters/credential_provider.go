package adapters

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"nuget-restore/internal/ports"
)

const credentialProviderPattern = "CredentialProvider*.exe"

// CredentialProviderAdapter finds the credential provider shipped next to
// the nuget executable, unless a path is configured explicitly.
type CredentialProviderAdapter struct{}

func NewCredentialProviderAdapter() CredentialProviderAdapter {
	return CredentialProviderAdapter{}
}

func (a CredentialProviderAdapter) Locate(ctx context.Context, executablePath string, configuredPath string) string {
	logger := log.Ctx(ctx)
	if configured := strings.TrimSpace(configuredPath); configured != "" {
		if isRegularFile(configured) {
			logger.Debug().Str("path", configured).Msg("using configured credential provider")
			return configured
		}
		logger.Warn().Str("path", configured).Msg("configured credential provider not found")
		return ""
	}
	toolDir := filepath.Dir(executablePath)
	for _, dir := range []string{toolDir, filepath.Join(toolDir, "CredentialProviders")} {
		matches, err := filepath.Glob(filepath.Join(dir, credentialProviderPattern))
		if err != nil {
			continue
		}
		for _, match := range matches {
			if isRegularFile(match) {
				logger.Debug().Str("path", match).Msg("credential provider found")
				return match
			}
		}
	}
	logger.Debug().Str("dir", toolDir).Msg("no credential provider found")
	return ""
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

var _ ports.CredentialProviderPort = CredentialProviderAdapter{}
