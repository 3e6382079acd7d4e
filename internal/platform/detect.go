package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct {
	goos   string
	goarch string
}

// NewDetector creates a new platform detector for the running process.
func NewDetector() Detector {
	return &RealDetector{goos: runtime.GOOS, goarch: runtime.GOARCH}
}

// Detect resolves the architecture token and gathers host details.
//
// The architecture token comes from GOARCH and is the only field that can
// fail detection. Host details from gopsutil are best effort: if gopsutil
// cannot read them the token and OS are still returned. A cancelled context
// is a hard failure.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	arch, err := ResolveArch(d.goarch)
	if err != nil {
		return nil, fmt.Errorf("platform detection failed: %w", err)
	}

	info := &Info{
		OS:      d.goos,
		Arch:    arch,
		ArchRaw: d.goarch,
	}

	hostInfo, err := host.InfoWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		return info, nil
	}

	info.KernelArch = hostInfo.KernelArch
	if info.IsLinux() {
		if id := normalizePlatform(hostInfo.Platform); id != "" {
			info.Platform = id
			info.Family = mapFamily(hostInfo.PlatformFamily)
			info.Version = normalizePlatform(hostInfo.PlatformVersion)
		}
	}

	return info, nil
}
