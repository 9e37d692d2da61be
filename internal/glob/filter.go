// Package glob selects strings by wildcard pattern.
package glob

import (
	gobwas "github.com/gobwas/glob"
)

// Separator keeps single-star wildcards inside one path segment.
const Separator = '/'

// Options configures FilterFiles.
type Options struct {
	Match  string
	Ignore []string
}

// FilterFiles returns the candidates matching opts.Match and none of
// opts.Ignore, in candidate order. Patterns are anchored to the whole
// candidate. A Match pattern that does not compile matches nothing; an
// ignore pattern that does not compile is skipped.
func FilterFiles(candidates []string, opts Options) []string {
	match, err := gobwas.Compile(opts.Match, Separator)
	if err != nil {
		return nil
	}

	ignore := make([]gobwas.Glob, 0, len(opts.Ignore))
	for _, pattern := range opts.Ignore {
		g, err := gobwas.Compile(pattern, Separator)
		if err != nil {
			continue
		}
		ignore = append(ignore, g)
	}

	var matched []string
	for _, candidate := range candidates {
		if !match.Match(candidate) || ignored(ignore, candidate) {
			continue
		}
		matched = append(matched, candidate)
	}
	return matched
}

func ignored(patterns []gobwas.Glob, candidate string) bool {
	for _, g := range patterns {
		if g.Match(candidate) {
			return true
		}
	}
	return false
}
