// Package platform resolves the host operating system and CPU architecture
// into the tokens used in microclaw release asset names.
//
// Detection uses runtime.GOOS and runtime.GOARCH for the values that decide
// which asset to install, and gopsutil for informational host details
// (kernel architecture, Linux distribution). The detected information can be
// injected into a Lua state as a read-only table for asset rules scripts.
package platform

import "context"

// Canonical architecture tokens as they appear in release asset names.
const (
	ArchX86_64  = "x86_64"
	ArchAArch64 = "aarch64"
)

// Linux distribution family constants.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky Linux, AlmaLinux
	FamilyFedora  = "fedora"  // Fedora
	FamilySUSE    = "suse"    // openSUSE, SLES
	FamilyArch    = "arch"    // Arch Linux, Manjaro
	FamilyAlpine  = "alpine"  // Alpine Linux
	FamilyUnknown = "unknown" // Unrecognized distributions
)

// Info contains platform detection information.
type Info struct {
	OS         string // "linux", "darwin", "windows"
	Arch       string // canonical token: "x86_64" or "aarch64"
	ArchRaw    string // GOARCH the installer was built for
	KernelArch string // architecture reported by the kernel (may be empty)
	Platform   string // distro ID (Linux only, e.g., "ubuntu")
	Family     string // canonical family (e.g., "debian")
	Version    string // distro version (Linux only, e.g., "22.04")
}

// Detector detects the current platform.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == "windows"
}

// IsX86_64 returns true if the architecture token is x86_64.
func (i *Info) IsX86_64() bool {
	return i.Arch == ArchX86_64
}

// IsAArch64 returns true if the architecture token is aarch64.
func (i *Info) IsAArch64() bool {
	return i.Arch == ArchAArch64
}

// ExecutableName returns the executable name for base on this platform.
func (i *Info) ExecutableName(base string) string {
	return ExecutableName(i.OS, base)
}
