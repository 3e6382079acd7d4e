// Package binary downloads, unpacks and installs the prebuilt microclaw
// executable from the latest release of a repository.
//
// # Pipeline
//
//  1. Resolve the host architecture token (platform.Detector)
//  2. Fetch the latest release metadata (ReleaseSource)
//  3. Select the asset for the architecture (asset.Selector)
//  4. Create the install directory if absent
//  5. In a uniquely named temporary directory: download the asset,
//     extract it, and locate the executable
//  6. Copy the executable into the install directory, replacing any
//     existing copy
//  7. Remove the temporary directory on every exit path
//
// Every step is fatal on error. There are no retries unless the
// Downloader is configured with them, and nothing is verified beyond HTTP
// status and archive integrity.
//
// # Usage
//
//	mgr, err := binary.NewManager(binary.Config{
//	    InstallDir: filepath.Join(home, ".local", "bin"),
//	    Detector:   platform.NewDetector(),
//	    Releases:   client,
//	})
//	if err != nil {
//	    return err
//	}
//	result, err := mgr.Install(ctx, binary.Options{Repo: "microclaw/microclaw"})
//
// # Components
//   - Manager: orchestration of the pipeline
//   - Downloader: HTTP download with optional retry logic
//   - Extractor: archive extraction (zip, tar.gz)
//   - WithTempDir: scoped temporary working directory
//   - FindExecutable, InstallFile: locating and placing the binary
package binary
