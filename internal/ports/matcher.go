package ports

// FileMatcherPort expands target-file patterns into concrete paths.
type FileMatcherPort interface {
	// Match returns the files selected by patterns. Relative patterns are
	// rooted at workingDir. When legacy is set the patterns use the
	// semicolon separated filter-spec syntax with +: and -: prefixes.
	Match(patterns string, workingDir string, legacy bool) ([]string, error)
}
