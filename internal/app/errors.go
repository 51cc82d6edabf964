package app

import "strings"

// NuGetExitError reports a nuget invocation that ran to completion with a
// non-zero exit code.
type NuGetExitError struct {
	File     string
	ExitCode int
	Stderr   string
}

func (e *NuGetExitError) Error() string {
	return message(msgNuGetFailed, e.ExitCode, strings.TrimSpace(e.Stderr))
}
