package binary

import "errors"

var (
	// ErrDownloadFailed is matched by errors from fetching the asset.
	ErrDownloadFailed = errors.New("download failed")
	// ErrExtractionFailed is matched by errors from unpacking the asset.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrExecutableNotFound is matched when the extracted tree has no
	// file with the expected executable name.
	ErrExecutableNotFound = errors.New("executable not found in archive")
)
