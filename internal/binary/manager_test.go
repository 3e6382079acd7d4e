package binary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/microclaw/microclaw-install/internal/asset"
	"github.com/microclaw/microclaw-install/internal/platform"
	"github.com/microclaw/microclaw-install/internal/release"
)

type fakeDetector struct {
	info *platform.Info
	err  error
}

func (d *fakeDetector) Detect(ctx context.Context) (*platform.Info, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.info, nil
}

type fakeReleases struct {
	rel   *release.Release
	err   error
	calls int
}

func (f *fakeReleases) Latest(ctx context.Context, repo string) (*release.Release, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	rel := *f.rel
	rel.Repo = repo
	return &rel, nil
}

var windowsX64 = &platform.Info{OS: "windows", Arch: platform.ArchX86_64, ArchRaw: "amd64"}

// zipBytes builds an in-memory zip archive.
func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "archive.zip")
	if err := writeZip(path, files); err != nil {
		t.Fatalf("failed to create zip: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read zip: %v", err)
	}
	return data
}

// newAssetServer serves each entry of files at /download/<name>.
func newAssetServer(t *testing.T, files map[string][]byte) (*httptest.Server, *int) {
	t.Helper()

	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		data, ok := files[strings.TrimPrefix(r.URL.Path, "/download/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		if _, err := w.Write(data); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

type testEnv struct {
	installDir string
	tempParent string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	root := t.TempDir()
	tempParent := filepath.Join(root, "tmp")
	if err := os.MkdirAll(tempParent, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return testEnv{
		installDir: filepath.Join(root, "bin"),
		tempParent: tempParent,
	}
}

func (e testEnv) manager(t *testing.T, d platform.Detector, r ReleaseSource) *Manager {
	t.Helper()

	m, err := NewManager(Config{
		InstallDir: e.installDir,
		TempDir:    e.tempParent,
		Detector:   d,
		Releases:   r,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestNewManager(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid_config",
			config: Config{
				InstallDir: "/tmp/bin",
				Detector:   &fakeDetector{info: windowsX64},
				Releases:   &fakeReleases{},
			},
		},
		{
			name: "missing_install_dir",
			config: Config{
				Detector: &fakeDetector{info: windowsX64},
				Releases: &fakeReleases{},
			},
			wantErr: true,
		},
		{
			name: "missing_detector",
			config: Config{
				InstallDir: "/tmp/bin",
				Releases:   &fakeReleases{},
			},
			wantErr: true,
		},
		{
			name: "missing_releases",
			config: Config{
				InstallDir: "/tmp/bin",
				Detector:   &fakeDetector{info: windowsX64},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, err := NewManager(tt.config)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if manager.InstallDir() != tt.config.InstallDir {
				t.Errorf("InstallDir() = %s, want %s", manager.InstallDir(), tt.config.InstallDir)
			}
		})
	}
}

func TestManagerInstall_WindowsZip(t *testing.T) {
	env := newTestEnv(t)

	const assetName = "microclaw-1.0.0-x86_64-pc-windows-msvc.zip"
	archive := zipBytes(t, map[string]string{
		"microclaw-1.0.0/README.md":     "readme",
		"microclaw-1.0.0/microclaw.exe": "MZ microclaw",
	})
	server, _ := newAssetServer(t, map[string][]byte{assetName: archive})

	releases := &fakeReleases{rel: &release.Release{
		Tag: "v1.0.0",
		Assets: []release.Asset{
			{Name: "microclaw-1.0.0-aarch64-pc-windows-msvc.zip", URL: server.URL + "/download/other.zip"},
			{Name: assetName, URL: server.URL + "/download/" + assetName, Size: int64(len(archive))},
		},
	}}

	result, err := env.manager(t, &fakeDetector{info: windowsX64}, releases).Install(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	want := filepath.Join(env.installDir, "microclaw.exe")
	if result.Path != want {
		t.Errorf("Path = %s, want %s", result.Path, want)
	}
	if result.Asset.Name != assetName {
		t.Errorf("Asset = %s, want %s", result.Asset.Name, assetName)
	}
	if result.Repo != DefaultRepo {
		t.Errorf("Repo = %s, want %s", result.Repo, DefaultRepo)
	}
	if result.Arch != platform.ArchX86_64 {
		t.Errorf("Arch = %s, want %s", result.Arch, platform.ArchX86_64)
	}
	if result.Replaced {
		t.Error("Replaced = true on a fresh install dir")
	}

	content, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read installed executable: %v", err)
	}
	if string(content) != "MZ microclaw" {
		t.Errorf("installed content = %q", content)
	}

	assertDirEmpty(t, env.tempParent)
}

func TestManagerInstall_LinuxTarGz(t *testing.T) {
	env := newTestEnv(t)

	const assetName = "microclaw-v2.1.0-aarch64-unknown-linux-musl.tar.gz"
	archivePath := filepath.Join(t.TempDir(), assetName)
	if err := writeTarGz(archivePath, map[string]string{"microclaw": "ELF microclaw"}); err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	archive, err := os.ReadFile(archivePath)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	server, _ := newAssetServer(t, map[string][]byte{assetName: archive})

	releases := &fakeReleases{rel: &release.Release{
		Tag:    "v2.1.0",
		Assets: []release.Asset{{Name: assetName, URL: server.URL + "/download/" + assetName}},
	}}
	linuxArm := &platform.Info{OS: "linux", Arch: platform.ArchAArch64, ArchRaw: "arm64"}

	m := env.manager(t, &fakeDetector{info: linuxArm}, releases)
	result, err := m.Install(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	if result.Path != filepath.Join(env.installDir, "microclaw") {
		t.Errorf("Path = %s", result.Path)
	}

	installed, err := m.IsInstalled("microclaw")
	if err != nil {
		t.Fatalf("IsInstalled failed: %v", err)
	}
	if !installed {
		t.Error("expected microclaw to be installed")
	}

	again, err := m.Install(context.Background(), Options{})
	if err != nil {
		t.Fatalf("second Install failed: %v", err)
	}
	if !again.Replaced {
		t.Error("Replaced = false when reinstalling over an existing executable")
	}

	assertDirEmpty(t, env.tempParent)
}

func TestManagerInstall_CustomPatterns(t *testing.T) {
	env := newTestEnv(t)

	const assetName = "custom-x86_64.zip"
	archive := zipBytes(t, map[string]string{"microclaw.exe": "custom"})
	server, _ := newAssetServer(t, map[string][]byte{assetName: archive})

	releases := &fakeReleases{rel: &release.Release{
		Tag:    "nightly",
		Assets: []release.Asset{{Name: assetName, URL: server.URL + "/download/" + assetName}},
	}}

	m, err := NewManager(Config{
		InstallDir: env.installDir,
		TempDir:    env.tempParent,
		Detector:   &fakeDetector{info: windowsX64},
		Releases:   releases,
		Patterns:   []string{`^custom-{arch}\.zip$`},
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	result, err := m.Install(context.Background(), Options{Repo: "someone/fork"})
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	if result.Repo != "someone/fork" {
		t.Errorf("Repo = %s", result.Repo)
	}
	if result.Version != nil {
		t.Errorf("Version = %v, want nil for non-semver tag", result.Version)
	}
}

func TestManagerInstall_UnsupportedPlatform(t *testing.T) {
	env := newTestEnv(t)

	_, archErr := platform.ResolveArch("s390x")
	releases := &fakeReleases{rel: &release.Release{}}

	_, err := env.manager(t, &fakeDetector{err: archErr}, releases).Install(context.Background(), Options{})
	if !errors.Is(err, platform.ErrUnsupportedPlatform) {
		t.Fatalf("expected ErrUnsupportedPlatform, got %v", err)
	}
	if !strings.Contains(err.Error(), "s390x") {
		t.Errorf("error does not name the architecture: %v", err)
	}
	if releases.calls != 0 {
		t.Errorf("release lookup attempted %d times", releases.calls)
	}
	if _, statErr := os.Stat(env.installDir); !os.IsNotExist(statErr) {
		t.Error("install dir created for unsupported platform")
	}
}

func TestManagerInstall_ReleaseLookupFailed(t *testing.T) {
	env := newTestEnv(t)

	releases := &fakeReleases{err: fmt.Errorf("%w: boom", release.ErrReleaseLookupFailed)}

	_, err := env.manager(t, &fakeDetector{info: windowsX64}, releases).Install(context.Background(), Options{})
	if !errors.Is(err, release.ErrReleaseLookupFailed) {
		t.Fatalf("expected ErrReleaseLookupFailed, got %v", err)
	}
	assertDirEmpty(t, env.tempParent)
}

func TestManagerInstall_AssetNotFound(t *testing.T) {
	env := newTestEnv(t)

	server, hits := newAssetServer(t, nil)
	releases := &fakeReleases{rel: &release.Release{
		Tag: "v1.0.0",
		Assets: []release.Asset{
			{Name: "microclaw-1.0.0-windows-arm64-build.zip", URL: server.URL + "/download/a.zip"},
			{Name: "microclaw-1.0.0-x86_64-unknown-linux-gnu.tar.gz", URL: server.URL + "/download/b.tar.gz"},
		},
	}}
	winArm := &platform.Info{OS: "windows", Arch: platform.ArchAArch64, ArchRaw: "arm64"}

	_, err := env.manager(t, &fakeDetector{info: winArm}, releases).Install(context.Background(), Options{})
	if !errors.Is(err, asset.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), platform.ArchAArch64) || !strings.Contains(err.Error(), DefaultRepo) {
		t.Errorf("error should name arch and repo: %v", err)
	}
	if *hits != 0 {
		t.Errorf("download attempted %d times", *hits)
	}
	if _, statErr := os.Stat(env.installDir); !os.IsNotExist(statErr) {
		t.Error("install dir created before an asset was selected")
	}
}

func TestManagerInstall_DownloadFailureCleansUp(t *testing.T) {
	env := newTestEnv(t)

	const assetName = "microclaw-1.0.0-x86_64-pc-windows-msvc.zip"
	server, hits := newAssetServer(t, nil)
	releases := &fakeReleases{rel: &release.Release{
		Tag:    "v1.0.0",
		Assets: []release.Asset{{Name: assetName, URL: server.URL + "/download/" + assetName}},
	}}

	_, err := env.manager(t, &fakeDetector{info: windowsX64}, releases).Install(context.Background(), Options{})
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("expected ErrDownloadFailed, got %v", err)
	}
	if *hits != 1 {
		t.Errorf("expected a single download attempt, got %d", *hits)
	}

	assertDirEmpty(t, env.tempParent)
	if _, statErr := os.Stat(filepath.Join(env.installDir, "microclaw.exe")); !os.IsNotExist(statErr) {
		t.Error("executable installed despite download failure")
	}
}

func TestManagerInstall_ExtractionFailed(t *testing.T) {
	env := newTestEnv(t)

	const assetName = "microclaw-1.0.0-x86_64-pc-windows-msvc.zip"
	server, _ := newAssetServer(t, map[string][]byte{assetName: []byte("<html>not a zip</html>")})
	releases := &fakeReleases{rel: &release.Release{
		Tag:    "v1.0.0",
		Assets: []release.Asset{{Name: assetName, URL: server.URL + "/download/" + assetName}},
	}}

	_, err := env.manager(t, &fakeDetector{info: windowsX64}, releases).Install(context.Background(), Options{})
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	assertDirEmpty(t, env.tempParent)
}

func TestManagerInstall_ExecutableMissing(t *testing.T) {
	env := newTestEnv(t)

	const assetName = "microclaw-1.0.0-x86_64-pc-windows-msvc.zip"
	archive := zipBytes(t, map[string]string{"README.md": "no binary here", "microclaw": "wrong name"})
	server, _ := newAssetServer(t, map[string][]byte{assetName: archive})
	releases := &fakeReleases{rel: &release.Release{
		Tag:    "v1.0.0",
		Assets: []release.Asset{{Name: assetName, URL: server.URL + "/download/" + assetName}},
	}}

	_, err := env.manager(t, &fakeDetector{info: windowsX64}, releases).Install(context.Background(), Options{})
	if !errors.Is(err, ErrExecutableNotFound) {
		t.Fatalf("expected ErrExecutableNotFound, got %v", err)
	}
	assertDirEmpty(t, env.tempParent)
	assertDirEmpty(t, env.installDir)
}

func TestManagerInstall_ThroughReleaseClient(t *testing.T) {
	env := newTestEnv(t)

	const assetName = "microclaw-v1.4.0-x86_64-pc-windows-msvc.zip"
	archive := zipBytes(t, map[string]string{"microclaw.exe": "MZ via api"})

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != DefaultUserAgent {
			t.Errorf("unexpected User-Agent on %s: %s", r.URL.Path, got)
		}
		switch r.URL.Path {
		case "/repos/microclaw/microclaw/releases/latest":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"tag_name":"v1.4.0","assets":[{"name":%q,"size":%d,"browser_download_url":%q}]}`,
				assetName, len(archive), server.URL+"/download/"+assetName)
		case "/download/" + assetName:
			if _, err := bytes.NewReader(archive).WriteTo(w); err != nil {
				t.Errorf("failed to write archive: %v", err)
			}
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, err := release.NewClient(release.Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	result, err := env.manager(t, &fakeDetector{info: windowsX64}, client).Install(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	if result.Version == nil || result.Version.String() != "1.4.0" {
		t.Errorf("Version = %v, want 1.4.0", result.Version)
	}
	if result.Tag != "v1.4.0" {
		t.Errorf("Tag = %s", result.Tag)
	}
	assertDirEmpty(t, env.tempParent)
}

func TestManagerIsInstalled(t *testing.T) {
	installDir := t.TempDir()
	m, err := NewManager(Config{
		InstallDir: installDir,
		Detector:   &fakeDetector{info: windowsX64},
		Releases:   &fakeReleases{},
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(installDir, "runnable"), []byte("x"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(installDir, "plain"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(installDir, "tool.exe"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Mkdir(filepath.Join(installDir, "dir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	tests := []struct {
		name string
		want bool
	}{
		{name: "runnable", want: true},
		{name: "plain", want: false},
		{name: "tool.exe", want: true},
		{name: "dir", want: false},
		{name: "missing", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.IsInstalled(tt.name)
			if err != nil {
				t.Fatalf("IsInstalled failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsInstalled(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if got := m.BinaryPath("microclaw"); got != filepath.Join(installDir, "microclaw") {
		t.Errorf("BinaryPath = %s", got)
	}
}
