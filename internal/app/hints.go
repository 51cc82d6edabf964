package app

import "strings"

// buildIdentityHint returns the permissions hint shown when a restore fails,
// or an empty string when the build identity is unknown.
func buildIdentityHint(req RestoreRequest) string {
	displayName := strings.TrimSpace(req.BuildIdentityDisplayName)
	account := strings.TrimSpace(req.BuildIdentityAccount)
	if displayName == "" && account == "" {
		return ""
	}
	return message(msgBuildIdentityHint, displayName, account)
}
