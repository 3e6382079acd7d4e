package shell

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// environment abstracts the inputs of shell detection.
type environment struct {
	getenv      func(string) string
	parentShell func(context.Context) string
}

var hostEnvironment = environment{
	getenv:      os.Getenv,
	parentShell: parentProcessName,
}

// DetectShell detects the user's shell using multiple methods
func DetectShell(ctx context.Context) *DetectionResult {
	return hostEnvironment.detect(ctx)
}

func (env environment) detect(ctx context.Context) *DetectionResult {
	// Method 1: $SHELL environment variable (most reliable)
	if shell := env.getenv("SHELL"); shell != "" {
		if shellType := parseShellFromPath(shell); shellType.IsValid() {
			return &DetectionResult{
				Shell:      shellType,
				Method:     "$SHELL environment variable",
				ShellPath:  shell,
				Confidence: "high",
			}
		}
	}

	// Method 2: parent process name
	if name := env.parentShell(ctx); name != "" {
		if shellType := parseShellFromPath(name); shellType.IsValid() {
			return &DetectionResult{
				Shell:      shellType,
				Method:     "parent process",
				ShellPath:  name,
				Confidence: "medium",
			}
		}
	}

	// Method 3: PowerShell marks its children with PSModulePath
	if env.getenv("PSModulePath") != "" {
		return &DetectionResult{
			Shell:      ShellPowerShell,
			Method:     "PSModulePath environment variable",
			Confidence: "low",
		}
	}

	return &DetectionResult{
		Shell:      ShellUnknown,
		Method:     "detection failed",
		ShellPath:  "",
		Confidence: "none",
	}
}

// parseShellFromPath extracts the shell type from a shell binary path
// Examples:
//   - /bin/bash -> bash
//   - /usr/bin/zsh -> zsh
//   - C:\Program Files\PowerShell\7\pwsh.exe -> powershell
func parseShellFromPath(shellPath string) ShellType {
	// Windows paths may reach us on other platforms through $SHELL
	shellPath = strings.ReplaceAll(shellPath, `\`, "/")
	baseName := strings.ToLower(filepath.Base(shellPath))
	baseName = strings.TrimSuffix(baseName, ".exe")
	// Login shells are reported as "-bash"
	baseName = strings.TrimPrefix(baseName, "-")

	switch baseName {
	case "bash":
		return ShellBash
	case "zsh":
		return ShellZsh
	case "fish":
		return ShellFish
	case "pwsh", "powershell":
		return ShellPowerShell
	default:
		return ShellUnknown
	}
}

// parentProcessName returns the executable name of the parent process, or
// "" when it cannot be determined.
func parentProcessName(ctx context.Context) string {
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getppid()))
	if err != nil {
		return ""
	}
	name, err := proc.NameWithContext(ctx)
	if err != nil {
		return ""
	}
	return name
}

// ValidateShell validates that a shell type is supported
func ValidateShell(shell ShellType) error {
	if !shell.IsValid() {
		return &UnsupportedShellError{Shell: shell.String()}
	}
	return nil
}

// GetSupportedShells returns a list of supported shells
func GetSupportedShells() []ShellType {
	return []ShellType{ShellBash, ShellZsh, ShellFish, ShellPowerShell}
}
