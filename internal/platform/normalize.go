package platform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedPlatform is matched by errors returned for architectures
// that have no release asset naming.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// UnsupportedPlatformError names the architecture that could not be resolved.
type UnsupportedPlatformError struct {
	Arch string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported architecture: %q (supported: %s, %s)", e.Arch, ArchX86_64, ArchAArch64)
}

// Is reports whether target is ErrUnsupportedPlatform.
func (e *UnsupportedPlatformError) Is(target error) bool {
	return target == ErrUnsupportedPlatform
}

// familyMap maps distribution names to their canonical family names.
var familyMap = map[string]string{
	"debian":   FamilyDebian,
	"ubuntu":   FamilyDebian,
	"rhel":     FamilyRHEL,
	"centos":   FamilyRHEL,
	"rocky":    FamilyRHEL,
	"fedora":   FamilyFedora,
	"suse":     FamilySUSE,
	"opensuse": FamilySUSE,
	"arch":     FamilyArch,
	"manjaro":  FamilyArch,
	"alpine":   FamilyAlpine,
}

// ResolveArch maps a host architecture value to the canonical token used in
// asset names. Both Go (amd64, arm64) and kernel (x86_64, aarch64) spellings
// are accepted.
func ResolveArch(arch string) (string, error) {
	switch arch {
	case "amd64", "x86_64":
		return ArchX86_64, nil
	case "arm64", "aarch64":
		return ArchAArch64, nil
	default:
		return "", &UnsupportedPlatformError{Arch: arch}
	}
}

// ExecutableName returns base with the platform executable suffix.
func ExecutableName(goos, base string) string {
	if goos == "windows" && !strings.HasSuffix(strings.ToLower(base), ".exe") {
		return base + ".exe"
	}
	return base
}

// normalizePlatform converts platform IDs to lowercase for consistency.
func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// mapFamily maps distribution family strings to canonical family names.
func mapFamily(family string) string {
	if canonical, ok := familyMap[normalizePlatform(family)]; ok {
		return canonical
	}
	return FamilyUnknown
}
