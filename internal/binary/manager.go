package binary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/microclaw/microclaw-install/internal/asset"
	"github.com/microclaw/microclaw-install/internal/logging"
	"github.com/microclaw/microclaw-install/internal/platform"
	"github.com/microclaw/microclaw-install/internal/release"
)

// ReleaseSource looks up the latest release of a repository.
type ReleaseSource interface {
	Latest(ctx context.Context, repo string) (*release.Release, error)
}

// Manager orchestrates asset selection, download, extraction and installation
type Manager struct {
	installDir string
	tempParent string
	detector   platform.Detector
	releases   ReleaseSource
	patterns   []string
	downloader *Downloader
	extractor  *Extractor
	logger     logging.Logger
}

// Config holds configuration for the binary manager
type Config struct {
	// InstallDir receives the executable. Created if missing.
	InstallDir string

	// TempDir is the parent of the per-run working directory (default: os.TempDir()).
	TempDir string

	// Detector resolves the host platform.
	Detector platform.Detector

	// Releases provides release metadata.
	Releases ReleaseSource

	// Patterns overrides asset.DefaultPatterns for the detected OS.
	Patterns []string

	// Retries is the number of extra download attempts.
	Retries int

	// Timeout bounds each download request (default: DefaultTimeout).
	Timeout time.Duration

	Logger logging.Logger
}

// NewManager creates a new binary manager
func NewManager(config Config) (*Manager, error) {
	if config.InstallDir == "" {
		return nil, fmt.Errorf("InstallDir is required")
	}
	if config.Detector == nil {
		return nil, fmt.Errorf("Detector is required")
	}
	if config.Releases == nil {
		return nil, fmt.Errorf("Releases is required")
	}

	logger := logging.OrNoop(config.Logger)

	return &Manager{
		installDir: config.InstallDir,
		tempParent: config.TempDir,
		detector:   config.Detector,
		releases:   config.Releases,
		patterns:   config.Patterns,
		downloader: NewDownloader(config.Retries, config.Timeout, logger),
		extractor:  NewExtractor(),
		logger:     logger,
	}, nil
}

// Install runs the full pipeline and returns where the executable landed.
// Nothing touches the filesystem before an asset has been selected.
func (m *Manager) Install(ctx context.Context, opts Options) (*Result, error) {
	startTime := time.Now()

	if opts.Repo == "" {
		opts.Repo = DefaultRepo
	}
	if opts.BinaryName == "" {
		opts.BinaryName = DefaultBinaryName
	}

	info, err := m.detector.Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve platform: %w", err)
	}
	exeName := info.ExecutableName(opts.BinaryName)
	m.logger.Info("platform resolved", "os", info.OS, "arch", info.Arch, "kernel_arch", info.KernelArch)

	rel, err := m.releases.Latest(ctx, opts.Repo)
	if err != nil {
		return nil, err
	}
	m.logger.Info("latest release", "repo", opts.Repo, "tag", rel.Tag, "assets", len(rel.Assets))

	patterns := m.patterns
	if len(patterns) == 0 {
		patterns = asset.DefaultPatterns(info.OS)
		if len(patterns) == 0 {
			m.logger.Warn("no built-in asset patterns for this operating system", "os", info.OS)
		}
	}

	selector := asset.NewSelector(patterns, m.logger)
	m.logger.Debug("asset patterns", "os", info.OS, "patterns", selector.Patterns())

	selected, err := selector.Pick(rel, info.Arch)
	if err != nil {
		return nil, err
	}
	m.logger.Info("asset selected", "asset", selected.FileName(), "url", selected.URL)

	if err := os.MkdirAll(m.installDir, 0o755); err != nil {
		return nil, fmt.Errorf("create install dir: %w", err)
	}

	// Note whether this run replaces an earlier installation
	replaced, err := m.IsInstalled(exeName)
	if err != nil {
		return nil, err
	}
	if replaced {
		m.logger.Info("replacing existing executable", "path", m.BinaryPath(exeName))
	}

	var installed string
	err = WithTempDir(m.tempParent, TempDirPrefix, m.logger, func(workDir string) error {
		archivePath := filepath.Join(workDir, filepath.Base(selected.FileName()))

		m.logger.Info("downloading", "url", selected.URL, "size", selected.Size)
		if err := m.downloader.DownloadToFile(ctx, selected.URL, archivePath); err != nil {
			return err
		}

		if err := m.extractor.Extract(archivePath, workDir); err != nil {
			return err
		}

		exePath, err := FindExecutable(workDir, exeName)
		if err != nil {
			return err
		}
		m.logger.Debug("executable located", "path", exePath)

		installed, err = InstallFile(exePath, m.installDir, exeName)
		if err != nil {
			return fmt.Errorf("install executable: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("installed", "path", installed)

	return &Result{
		Repo:     opts.Repo,
		Tag:      rel.Tag,
		Version:  rel.Version,
		Arch:     info.Arch,
		Asset:    selected,
		Path:     installed,
		Replaced: replaced,
		Duration: time.Since(startTime),
	}, nil
}

// IsInstalled checks if an executable is present in the install directory
// and, outside Windows, has an executable bit set.
func (m *Manager) IsInstalled(name string) (bool, error) {
	info, err := os.Stat(m.BinaryPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat binary: %w", err)
	}

	if !info.Mode().IsRegular() {
		return false, nil
	}

	if filepath.Ext(name) != ".exe" && info.Mode().Perm()&0o111 == 0 {
		return false, nil
	}

	return true, nil
}

// BinaryPath returns the filesystem path of name in the install directory
func (m *Manager) BinaryPath(name string) string {
	return filepath.Join(m.installDir, name)
}

// InstallDir returns the directory executables are installed into.
func (m *Manager) InstallDir() string {
	return m.installDir
}
