package asset

import (
	"context"
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/microclaw/microclaw-install/internal/platform"
)

// ScriptError reports a rules script that failed to run or returned an
// unusable patterns value.
type ScriptError struct {
	Path    string
	Message string
	Detail  string
}

func (e *ScriptError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("rules script %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("rules script %s: %s: %s", e.Path, e.Message, e.Detail)
}

// LoadScript runs a Lua rules file and returns the pattern templates it
// assigns to the global "patterns" array. The script sees a read-only
// "platform" table describing the host.
//
//	patterns = { "^microclaw-v?{semver}-{arch}-pc-windows-gnu\\.zip$" }
//	if platform.is_windows then
//	  table.insert(patterns, "^microclaw-v?{semver}-{arch}-pc-windows-msvc\\.zip$")
//	end
func LoadScript(ctx context.Context, path string, info *platform.Info) ([]string, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules script: %w", err)
	}
	return parseScript(ctx, path, string(code), info)
}

func parseScript(ctx context.Context, path, code string, info *platform.Info) ([]string, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if info != nil {
		if err := platform.InjectPlatformTable(L, info); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(code); err != nil {
		return nil, &ScriptError{Path: path, Message: "Lua error", Detail: err.Error()}
	}

	value := L.GetGlobal("patterns")
	table, ok := value.(*lua.LTable)
	if !ok {
		return nil, &ScriptError{
			Path:    path,
			Message: "missing or invalid 'patterns' table",
			Detail:  fmt.Sprintf("expected table, got %s", value.Type()),
		}
	}

	var patterns []string
	for i := 1; i <= table.Len(); i++ {
		entry := table.RawGetInt(i)
		s, ok := entry.(lua.LString)
		if !ok {
			return nil, &ScriptError{
				Path:    path,
				Message: fmt.Sprintf("patterns[%d] must be a string", i),
				Detail:  fmt.Sprintf("got %s", entry.Type()),
			}
		}
		patterns = append(patterns, string(s))
	}

	if len(patterns) == 0 {
		return nil, &ScriptError{Path: path, Message: "'patterns' table is empty"}
	}
	return patterns, nil
}

// newSandboxedVM creates a Lua VM without os, io, module loading or debug.
func newSandboxedVM() *lua.LState {
	L := lua.NewState()
	L.SetGlobal("os", lua.LNil)
	L.SetGlobal("io", lua.LNil)
	L.SetGlobal("require", lua.LNil)
	L.SetGlobal("dofile", lua.LNil)
	L.SetGlobal("loadfile", lua.LNil)
	L.SetGlobal("load", lua.LNil)
	L.SetGlobal("loadstring", lua.LNil)
	L.SetGlobal("debug", lua.LNil)
	return L
}
