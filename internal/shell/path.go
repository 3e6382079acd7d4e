package shell

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// PathHint returns the line that appends dir to PATH in the given shell.
// Unknown shells get a POSIX export line.
func PathHint(shell ShellType, dir string) string {
	switch shell {
	case ShellFish:
		return fmt.Sprintf("fish_add_path %s", quoteFish(dir))
	case ShellPowerShell:
		return fmt.Sprintf(`$env:Path += ";%s"`, strings.ReplaceAll(dir, `"`, "`\""))
	default:
		return fmt.Sprintf(`export PATH="$PATH:%s"`, quotePOSIX(dir))
	}
}

// NewGuidance builds the PATH guidance for dir. The rc file is left empty
// for unknown shells and when homeDir is empty.
func NewGuidance(shell ShellType, dir, homeDir string) Guidance {
	g := Guidance{Shell: shell, Line: PathHint(shell, dir)}
	if rc, err := GetRCFilePath(shell, homeDir); err == nil {
		g.RCFile = rc
	}
	return g
}

// InPath reports whether dir is one of the entries of pathEnv.
func InPath(dir, pathEnv string) bool {
	return inPath(dir, pathEnv, runtime.GOOS, filepath.ListSeparator)
}

func inPath(dir, pathEnv, goos string, sep rune) bool {
	want := normalizeDir(dir, goos)
	if want == "" {
		return false
	}
	for _, entry := range strings.Split(pathEnv, string(sep)) {
		if normalizeDir(entry, goos) == want {
			return true
		}
	}
	return false
}

func normalizeDir(dir, goos string) string {
	dir = strings.Trim(strings.TrimSpace(dir), `"`)
	if dir == "" {
		return ""
	}
	dir = filepath.Clean(dir)
	if goos == "windows" {
		dir = strings.ToLower(strings.TrimRight(dir, `\/`))
	}
	return dir
}

// quotePOSIX escapes the characters that are special inside double quotes.
func quotePOSIX(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")
	return r.Replace(s)
}

func quoteFish(s string) string {
	if !strings.ContainsAny(s, " \t'\"$\\") {
		return s
	}
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}
