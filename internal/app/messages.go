package app

import "fmt"

type messageID string

const (
	msgPackagesInstalled       messageID = "PackagesInstalledSuccessfully"
	msgPackagesFailedToInstall messageID = "PackagesFailedToInstall"
	msgNotARegularFile         messageID = "NotARegularFile"
	msgNuGetFailed             messageID = "Error_NugetFailedWithCodeAndErr"
	msgBuildIdentityHint       messageID = "BuildIdentityPermissionsHint"
	msgNoFilesMatched          messageID = "NoFilesMatched"
)

// TODO: load catalogs for other locales from the pipeline's
// System.Culture once translated strings exist.
var messagesEnUS = map[messageID]string{
	msgPackagesInstalled:       "Packages restored successfully.",
	msgPackagesFailedToInstall: "Packages failed to restore.",
	msgNotARegularFile:         "%s is not a solution file. Check the 'path to solution or packages.config' input.",
	msgNuGetFailed:             "The nuget command failed with exit code(%d) and error(%s)",
	msgBuildIdentityHint:       "For internal feeds, make sure the build service identity '%s' [%s] has access to the feed.",
	msgNoFilesMatched:          "No files matched the search pattern %q.",
}

func message(id messageID, args ...any) string {
	format, ok := messagesEnUS[id]
	if !ok {
		return string(id)
	}
	return fmt.Sprintf(format, args...)
}
