// Package testutils provides fixture builders shared by package tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"howett.net/plist"
)

// ZipEntry is one member written by WriteZip, in order.
type ZipEntry struct {
	Name string
	Data []byte
}

// WriteZip writes a zip archive named name into dir with the entries in the
// given order and returns its path. Entries with a trailing slash are directories.
func WriteZip(t testing.TB, dir, name string, entries []ZipEntry) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", e.Name, err)
		}
		if len(e.Data) == 0 {
			continue
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatalf("failed to write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finalize %s: %v", path, err)
	}
	return path
}

// Plist encodes fields as a property list in the given howett.net/plist format
// (plist.XMLFormat, plist.BinaryFormat, ...).
func Plist(t testing.TB, fields map[string]any, format int) []byte {
	t.Helper()

	data, err := plist.Marshal(fields, format)
	if err != nil {
		t.Fatalf("failed to marshal plist: %v", err)
	}
	return data
}

// BundleFields returns a minimal Info.plist dictionary.
func BundleFields(id, shortVersion string, bundleVersion any) map[string]any {
	return map[string]any{
		"CFBundleIdentifier":         id,
		"CFBundleShortVersionString": shortVersion,
		"CFBundleVersion":            bundleVersion,
		"CFBundleName":               "Example",
	}
}

// WriteIPA writes a well-formed IPA with Payload/<app>.app/Info.plist in XML
// form, preceded by the Payload directory entries, and returns its path.
func WriteIPA(t testing.TB, dir, name, app string, fields map[string]any) string {
	t.Helper()

	return WriteZip(t, dir, name, []ZipEntry{
		{Name: "Payload/"},
		{Name: "Payload/" + app + ".app/"},
		{Name: "Payload/" + app + ".app/" + app, Data: []byte{0xcf, 0xfa, 0xed, 0xfe}},
		{Name: "Payload/" + app + ".app/Info.plist", Data: Plist(t, fields, plist.XMLFormat)},
	})
}

// WriteFile writes raw bytes into dir/name and returns the path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// WriteTempConfig writes content to .appver.yaml in a fresh temp dir and
// returns the file path.
func WriteTempConfig(t testing.TB, content string) string {
	t.Helper()

	return WriteFile(t, t.TempDir(), ".appver.yaml", []byte(content))
}
