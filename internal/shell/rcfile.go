package shell

import (
	"fmt"
	"path/filepath"
)

// GetRCFilePath returns the path to the shell's startup file under homeDir.
// PowerShell keeps its profile location in $PROFILE, which is returned
// verbatim. An empty homeDir is an error for every other shell.
func GetRCFilePath(shell ShellType, homeDir string) (string, error) {
	if err := ValidateShell(shell); err != nil {
		return "", err
	}

	if homeDir == "" && shell != ShellPowerShell {
		return "", fmt.Errorf("home directory unknown, cannot locate %s startup file", shell)
	}

	switch shell {
	case ShellBash:
		return filepath.Join(homeDir, ".bashrc"), nil
	case ShellZsh:
		return filepath.Join(homeDir, ".zshrc"), nil
	case ShellFish:
		return filepath.Join(homeDir, ".config", "fish", "config.fish"), nil
	case ShellPowerShell:
		return "$PROFILE", nil
	default:
		return "", &UnsupportedShellError{Shell: shell.String()}
	}
}
