package asset

import (
	"errors"
	"fmt"

	"github.com/microclaw/microclaw-install/internal/logging"
	"github.com/microclaw/microclaw-install/internal/release"
)

// ErrAssetNotFound is matched when no rule selects an asset.
var ErrAssetNotFound = errors.New("asset not found")

// NotFoundError reports that no asset of Repo matched for Arch.
type NotFoundError struct {
	Repo string
	Arch string
	Tag  string
}

func (e *NotFoundError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("no release asset found for architecture %s in %s (release %s)", e.Arch, e.Repo, e.Tag)
	}
	return fmt.Sprintf("no release asset found for architecture %s in %s", e.Arch, e.Repo)
}

// Is reports whether target is ErrAssetNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrAssetNotFound
}

// Select returns the first asset matched by the first rule that matches
// anything. The second result is false when no rule matches.
func Select(assets []release.Asset, rules []Rule) (release.Asset, bool) {
	_, a, ok := selectWithRule(assets, rules)
	return a, ok
}

func selectWithRule(assets []release.Asset, rules []Rule) (int, release.Asset, bool) {
	for i, rule := range rules {
		for _, a := range assets {
			if rule.Match(a.FileName()) {
				return i, a, true
			}
		}
	}
	return -1, release.Asset{}, false
}

// Selector picks assets from release metadata using pattern templates.
type Selector struct {
	patterns []string
	logger   logging.Logger
}

// NewSelector creates a selector for the given pattern templates.
func NewSelector(patterns []string, logger logging.Logger) *Selector {
	return &Selector{patterns: patterns, logger: logging.OrNoop(logger)}
}

// Patterns returns the selector's pattern templates.
func (s *Selector) Patterns() []string {
	return append([]string(nil), s.patterns...)
}

// Pick selects the asset of rel for arch, or returns a *NotFoundError.
func (s *Selector) Pick(rel *release.Release, arch string) (release.Asset, error) {
	if rel == nil {
		return release.Asset{}, fmt.Errorf("release metadata is required")
	}

	rules, err := Compile(s.patterns, arch)
	if err != nil {
		return release.Asset{}, err
	}

	idx, a, ok := selectWithRule(rel.Assets, rules)
	if !ok {
		return release.Asset{}, &NotFoundError{Repo: rel.Repo, Arch: arch, Tag: rel.Tag}
	}

	s.logger.Debug("asset selected", "asset", a.FileName(), "rule", idx+1, "pattern", rules[idx].Name)
	return a, nil
}
