package adapters

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/bmatcuk/doublestar/v4"

	"nuget-restore/internal/ports"
)

type FileMatcherAdapter struct{}

func NewFileMatcherAdapter() FileMatcherAdapter {
	return FileMatcherAdapter{}
}

type matchPattern struct {
	pattern string
	exclude bool
}

func (a FileMatcherAdapter) Match(patterns string, workingDir string, legacy bool) ([]string, error) {
	var parsed []matchPattern
	if legacy {
		parsed = parseFilterSpec(patterns)
	} else {
		parsed = parseMatchPatterns(patterns)
	}
	if len(parsed) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("file pattern is empty")
	}
	root := strings.TrimSpace(workingDir)
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to resolve working directory").
				WithCause(err)
		}
		root = cwd
	}

	seen := map[string]struct{}{}
	var matches []string
	var excludes []string
	for _, p := range parsed {
		pattern := p.pattern
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(root, pattern)
		}
		pattern = filepath.ToSlash(filepath.Clean(pattern))
		if p.exclude {
			excludes = append(excludes, pattern)
			continue
		}
		found, err := globAbsolute(pattern)
		if err != nil {
			return nil, err
		}
		for _, path := range found {
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}
			matches = append(matches, path)
		}
	}

	var result []string
	for _, path := range matches {
		if excluded(path, excludes) {
			continue
		}
		result = append(result, filepath.FromSlash(path))
	}
	sort.Strings(result)
	return result, nil
}

func globAbsolute(pattern string) ([]string, error) {
	base, rest := doublestar.SplitPattern(pattern)
	if rest == "" {
		rest = "."
	}
	found, err := doublestar.Glob(os.DirFS(base), rest)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid file pattern: " + pattern).
			WithCause(err)
	}
	paths := make([]string, 0, len(found))
	for _, rel := range found {
		paths = append(paths, strings.TrimSuffix(base, "/")+"/"+rel)
	}
	return paths, nil
}

func excluded(path string, excludes []string) bool {
	for _, pattern := range excludes {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

// parseMatchPatterns reads newline separated patterns; a leading ! excludes.
func parseMatchPatterns(value string) []matchPattern {
	var patterns []matchPattern
	for _, line := range strings.Split(value, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "!") {
			if rest := strings.TrimSpace(line[1:]); rest != "" {
				patterns = append(patterns, matchPattern{pattern: rest, exclude: true})
			}
			continue
		}
		patterns = append(patterns, matchPattern{pattern: line})
	}
	return patterns
}

// parseFilterSpec reads the legacy semicolon separated filter syntax where
// +: includes and -: excludes.
func parseFilterSpec(value string) []matchPattern {
	var patterns []matchPattern
	for _, item := range strings.Split(value, ";") {
		item = strings.TrimSpace(item)
		switch {
		case item == "":
			continue
		case strings.HasPrefix(item, "-:"):
			if rest := strings.TrimSpace(item[2:]); rest != "" {
				patterns = append(patterns, matchPattern{pattern: rest, exclude: true})
			}
		case strings.HasPrefix(item, "+:"):
			if rest := strings.TrimSpace(item[2:]); rest != "" {
				patterns = append(patterns, matchPattern{pattern: rest})
			}
		default:
			patterns = append(patterns, matchPattern{pattern: item})
		}
	}
	return patterns
}

var _ ports.FileMatcherPort = FileMatcherAdapter{}
