// Package apk extracts application id and version from Android packages by
// decoding the binary AndroidManifest.xml.
package apk

import (
	"context"
	"errors"
	"fmt"

	"github.com/indaco/appver/internal/pkginfo"
	androidapk "github.com/shogo82148/androidbinary/apk"
)

// ErrManifest is returned when the APK manifest cannot be decoded.
var ErrManifest = errors.New("failed to read AndroidManifest.xml")

// Manifest holds the identity fields of an APK manifest.
type Manifest struct {
	Package     string
	VersionName string
	VersionCode int32
}

// ManifestReader decodes the manifest of the APK at path.
type ManifestReader func(path string) (Manifest, error)

// Extractor reads package info from .apk files.
type Extractor struct {
	readManifest ManifestReader
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithManifestReader replaces the androidbinary-backed manifest decoder.
func WithManifestReader(r ManifestReader) Option {
	return func(e *Extractor) {
		if r != nil {
			e.readManifest = r
		}
	}
}

// New creates an APK Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{readManifest: ReadManifest}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract decodes the manifest of the APK at path.
func (e *Extractor) Extract(ctx context.Context, path string) (pkginfo.PackageInfo, error) {
	if err := ctx.Err(); err != nil {
		return pkginfo.PackageInfo{}, err
	}

	m, err := e.readManifest(path)
	if err != nil {
		return pkginfo.PackageInfo{}, fmt.Errorf("%w in %q: %w", ErrManifest, path, err)
	}

	return pkginfo.New(m.Package, m.VersionName, int64(m.VersionCode))
}

// ReadManifest decodes the manifest with androidbinary. Decoder panics on
// malformed input are returned as errors.
func ReadManifest(path string) (m Manifest, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while decoding manifest: %v", r)
		}
	}()

	pkg, err := androidapk.OpenFile(path)
	if err != nil {
		return Manifest{}, err
	}
	defer pkg.Close()

	manifest := pkg.Manifest()

	name, err := manifest.Package.String()
	if err != nil {
		return Manifest{}, fmt.Errorf("package: %w", err)
	}
	versionName, err := manifest.VersionName.String()
	if err != nil {
		return Manifest{}, fmt.Errorf("versionName: %w", err)
	}
	versionCode, err := manifest.VersionCode.Int32()
	if err != nil {
		return Manifest{}, fmt.Errorf("versionCode: %w", err)
	}

	return Manifest{Package: name, VersionName: versionName, VersionCode: versionCode}, nil
}
