// Package release looks up the latest published release of a GitHub
// repository and exposes its downloadable assets in the order the API
// returned them.
package release

import (
	"errors"
	"path"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrReleaseLookupFailed is matched by every error returned from Latest.
var ErrReleaseLookupFailed = errors.New("release lookup failed")

// Asset is a single downloadable file attached to a release.
type Asset struct {
	Name string
	URL  string
	Size int64
}

// FileName returns the asset name, falling back to the last URL segment.
func (a Asset) FileName() string {
	if a.Name != "" {
		return a.Name
	}
	return path.Base(strings.TrimRight(a.URL, "/"))
}

// Release is the metadata of one published release.
type Release struct {
	Repo    string
	Tag     string
	Name    string
	Version *semver.Version // nil when the tag is not a semantic version
	Assets  []Asset
}

// SplitRepo splits "owner/name" into its parts.
func SplitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(strings.TrimSpace(repo), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &RepoFormatError{Repo: repo}
	}
	return parts[0], parts[1], nil
}

// RepoFormatError reports a repository identifier that is not owner/name.
type RepoFormatError struct {
	Repo string
}

func (e *RepoFormatError) Error() string {
	return "invalid repository " + `"` + e.Repo + `"` + ": expected owner/name"
}
