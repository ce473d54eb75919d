// Package ipa extracts bundle identity and version from iOS application archives.
//
// An IPA is a zip archive whose application bundle lives at Payload/<Name>.app/.
// The bundle's Info.plist (binary or XML) carries CFBundleIdentifier,
// CFBundleShortVersionString and CFBundleVersion.
package ipa

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/indaco/appver/internal/archive"
	"github.com/indaco/appver/internal/pkginfo"
	"howett.net/plist"
)

// Info.plist keys read by the extractor.
const (
	KeyBundleIdentifier   = "CFBundleIdentifier"
	KeyShortVersionString = "CFBundleShortVersionString"
	KeyBundleVersion      = "CFBundleVersion"
)

// InfoPlistPattern matches the top-level Info.plist of the application bundle,
// exactly one directory below Payload/.
var InfoPlistPattern = regexp.MustCompile(`(?i)^Payload/[^/]+\.app/Info\.plist$`)

// ErrDecode is returned when the Info.plist bytes are not a property list dictionary.
var ErrDecode = errors.New("failed to decode Info.plist")

// KeyError reports a required Info.plist key that is missing or mistyped.
type KeyError struct {
	Key    string
	Reason string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("Info.plist key %s: %s", e.Key, e.Reason)
}

// Extractor reads package info from .ipa files.
type Extractor struct {
	scanner *archive.Scanner
	policy  Policy
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithPolicy sets the CFBundleVersion coercion policy.
func WithPolicy(p Policy) Option {
	return func(e *Extractor) {
		if p.IsValid() {
			e.policy = p
		}
	}
}

// WithScanner sets the archive scanner, e.g. to change the entry size cap.
func WithScanner(s *archive.Scanner) Option {
	return func(e *Extractor) {
		if s != nil {
			e.scanner = s
		}
	}
}

// New creates an IPA Extractor using PolicyPrefix and the default scanner
// unless overridden.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		scanner: archive.NewScanner(archive.DefaultMaxEntrySize),
		policy:  PolicyPrefix,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the coercion policy in use.
func (e *Extractor) Policy() Policy {
	return e.policy
}

// Extract reads the application bundle's Info.plist out of the IPA at path.
func (e *Extractor) Extract(ctx context.Context, path string) (pkginfo.PackageInfo, error) {
	entry, err := e.scanner.Find(ctx, path, InfoPlistPattern)
	if err != nil {
		return pkginfo.PackageInfo{}, err
	}

	info, err := e.Decode(entry.Data)
	if err != nil {
		return pkginfo.PackageInfo{}, fmt.Errorf("%s in %q: %w", entry.Name, path, err)
	}
	return info, nil
}

// Decode builds a PackageInfo from raw Info.plist bytes.
func (e *Extractor) Decode(data []byte) (pkginfo.PackageInfo, error) {
	var dict map[string]any
	if _, err := plist.Unmarshal(data, &dict); err != nil {
		return pkginfo.PackageInfo{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if dict == nil {
		return pkginfo.PackageInfo{}, fmt.Errorf("%w: not a dictionary", ErrDecode)
	}

	id, err := stringValue(dict, KeyBundleIdentifier)
	if err != nil {
		return pkginfo.PackageInfo{}, err
	}
	versionName, err := stringValue(dict, KeyShortVersionString)
	if err != nil {
		return pkginfo.PackageInfo{}, err
	}

	raw, ok := dict[KeyBundleVersion]
	if !ok {
		return pkginfo.PackageInfo{}, &KeyError{Key: KeyBundleVersion, Reason: "missing"}
	}
	versionCode, err := e.policy.Coerce(raw)
	if err != nil {
		return pkginfo.PackageInfo{}, fmt.Errorf("Info.plist key %s: %w", KeyBundleVersion, err)
	}

	return pkginfo.New(id, versionName, versionCode)
}

func stringValue(dict map[string]any, key string) (string, error) {
	raw, ok := dict[key]
	if !ok {
		return "", &KeyError{Key: key, Reason: "missing"}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &KeyError{Key: key, Reason: fmt.Sprintf("expected string, got %T", raw)}
	}
	return s, nil
}
