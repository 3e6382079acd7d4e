// Package testutil provides utilities for testing the installer in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Variables cleared by SetupTestEnv so the developer's own settings never
// leak into a test.
var clearedVars = []string{
	"MICROCLAW_REPO",
	"MICROCLAW_INSTALL_DIR",
	"MICROCLAW_RULES_FILE",
	"MICROCLAW_GITHUB_TOKEN",
	"MICROCLAW_API_URL",
	"MICROCLAW_RETRIES",
	"MICROCLAW_TIMEOUT",
	"MICROCLAW_LOG_LEVEL",
	"MICROCLAW_LOG_FORMAT",
	"GITHUB_TOKEN",
}

// SetupTestEnv points HOME, the user config directory and TMPDIR at fresh
// temp directories and clears every MICROCLAW_* variable. This ensures tests
// never touch:
// - the user's real install directory
// - the user's installer config file
// - other test runs
//
// The cleanup function is automatically handled by t.TempDir(),
// so callers don't need to manually clean up.
func SetupTestEnv(t *testing.T) {
	t.Helper()

	tmpDir := t.TempDir()

	home := filepath.Join(tmpDir, "home")
	configDir := filepath.Join(tmpDir, "config")
	tempDir := filepath.Join(tmpDir, "tmp")

	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", configDir)
	t.Setenv("APPDATA", configDir)
	t.Setenv("TMPDIR", tempDir)

	for _, name := range clearedVars {
		t.Setenv(name, "")
	}

	for _, dir := range []string{home, configDir, tempDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}
}
