package asset

import (
	"fmt"
	"regexp"
	"strings"
)

// SemverPattern matches the MAJOR.MINOR.PATCH digits of a version without a
// leading "v". Pre-release and build suffixes are not part of it, so the
// exact rules never accept extra words between version and architecture.
const SemverPattern = `\d+\.\d+\.\d+`

// Rule is a single named predicate over asset file names.
type Rule struct {
	Name  string
	Match func(name string) bool
}

// RegexpRule returns a rule that matches names against re.
func RegexpRule(name string, re *regexp.Regexp) Rule {
	return Rule{Name: name, Match: re.MatchString}
}

// ExpandPattern substitutes the {arch} and {semver} placeholders.
func ExpandPattern(pattern, arch string) string {
	return strings.NewReplacer(
		"{arch}", regexp.QuoteMeta(arch),
		"{semver}", SemverPattern,
	).Replace(pattern)
}

// Compile turns pattern templates into rules for arch, preserving order.
func Compile(patterns []string, arch string) ([]Rule, error) {
	if arch == "" {
		return nil, fmt.Errorf("architecture token is required")
	}

	rules := make([]Rule, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(ExpandPattern(p, arch))
		if err != nil {
			return nil, fmt.Errorf("compile asset pattern %q: %w", p, err)
		}
		rules = append(rules, RegexpRule(p, re))
	}
	return rules, nil
}

// DefaultPatterns returns the built-in pattern templates for goos, exact
// target triple first and a loose fallback second. Unknown systems get nil.
func DefaultPatterns(goos string) []string {
	switch goos {
	case "windows":
		return []string{
			`^microclaw-v?{semver}-{arch}-pc-windows-msvc\.zip$`,
			`^microclaw-v?{semver}-.*{arch}.*windows.*\.zip$`,
		}
	case "linux":
		return []string{
			`^microclaw-v?{semver}-{arch}-unknown-linux-(?:gnu|musl)\.tar\.gz$`,
			`^microclaw-v?{semver}-.*{arch}.*linux.*\.tar\.gz$`,
		}
	case "darwin":
		return []string{
			`^microclaw-v?{semver}-{arch}-apple-darwin\.tar\.gz$`,
			`^microclaw-v?{semver}-.*{arch}.*darwin.*\.tar\.gz$`,
		}
	default:
		return nil
	}
}
