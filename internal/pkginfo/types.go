package pkginfo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format identifies the container format of a package file.
type Format int

const (
	// FormatUnsupported is any file whose extension is not a known package type.
	FormatUnsupported Format = iota

	// FormatIPA is an iOS application archive (.ipa).
	FormatIPA

	// FormatAPK is an Android application package (.apk).
	FormatAPK
)

// String returns the lowercase extension name of the format.
func (f Format) String() string {
	switch f {
	case FormatIPA:
		return "ipa"
	case FormatAPK:
		return "apk"
	default:
		return "unsupported"
	}
}

// IsSupported returns true if an extractor exists for the format.
func (f Format) IsSupported() bool {
	return f == FormatIPA || f == FormatAPK
}

// DetectFormat resolves the package format from the path's extension.
// Matching is case-insensitive; a path with no extension is unsupported.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ipa":
		return FormatIPA
	case ".apk":
		return FormatAPK
	default:
		return FormatUnsupported
	}
}

// ErrIncomplete is returned when a record would be built without an
// identifier or version name.
var ErrIncomplete = errors.New("incomplete package info")

// PackageInfo is the identity and version of an application package.
// Values are only built through New, so ID and VersionName are never empty.
type PackageInfo struct {
	// ID is the bundle identifier (iOS) or application id (Android).
	ID string

	// VersionName is the human-readable version
	// (CFBundleShortVersionString or versionName).
	VersionName string

	// VersionCode is the numeric build version
	// (CFBundleVersion or versionCode).
	VersionCode int64
}

// New builds a PackageInfo, rejecting an empty id or version name.
func New(id, versionName string, versionCode int64) (PackageInfo, error) {
	if id == "" {
		return PackageInfo{}, fmt.Errorf("%w: empty application id", ErrIncomplete)
	}
	if versionName == "" {
		return PackageInfo{}, fmt.Errorf("%w: empty version name for %q", ErrIncomplete, id)
	}
	return PackageInfo{ID: id, VersionName: versionName, VersionCode: versionCode}, nil
}

// Dump writes the record in its plain three-line form.
func (p PackageInfo) Dump(w io.Writer) error {
	_, err := fmt.Fprintf(w, "ApplicationID: %s\nVersionName: %s\nVersionCode: %d\n",
		p.ID, p.VersionName, p.VersionCode)
	return err
}

// Extractor reads package metadata from a file of one specific format.
type Extractor interface {
	Extract(ctx context.Context, path string) (PackageInfo, error)
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, path string) (PackageInfo, error)

// Extract calls f(ctx, path).
func (f ExtractorFunc) Extract(ctx context.Context, path string) (PackageInfo, error) {
	return f(ctx, path)
}
