package binary

import (
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/microclaw/microclaw-install/internal/release"
)

const (
	// DefaultRepo is the repository installed when none is given.
	DefaultRepo = "microclaw/microclaw"
	// DefaultBinaryName is the executable base name; ".exe" is added on Windows.
	DefaultBinaryName = "microclaw"
	// TempDirPrefix prefixes the per-run working directory name.
	TempDirPrefix = "microclaw-install-"
)

// Options configures a single installation.
type Options struct {
	// Repo is the owner/name of the repository to install from.
	Repo string
	// BinaryName overrides DefaultBinaryName.
	BinaryName string
}

// Result describes a completed installation.
type Result struct {
	Repo     string
	Tag      string
	Version  *semver.Version // nil when the release tag is not semver
	Arch     string
	Asset    release.Asset
	Path     string // installed executable
	Replaced bool   // an executable already existed at Path
	Duration time.Duration
}
