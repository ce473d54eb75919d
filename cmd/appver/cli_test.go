package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/indaco/appver/internal/cli"
	"github.com/indaco/appver/internal/testutils"
)

// chdir switches to dir for the duration of the test so no stray
// .appver.yaml is picked up.
func chdir(t *testing.T, dir string) {
	t.Helper()

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(origDir)
	})
}

func TestRunCLI_PrintsIPAInfo(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)
	path := testutils.WriteIPA(t, tmp, "Demo.ipa", "Demo",
		testutils.BundleFields("com.example.demo", "4.0.1", "42"))

	var stdout, stderr bytes.Buffer
	if err := runCLI([]string{"appver", path}, &stdout, &stderr); err != nil {
		t.Fatalf("runCLI() error: %v (stderr %q)", err, stderr.String())
	}

	want := "ApplicationID: com.example.demo\nVersionName: 4.0.1\nVersionCode: 42\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestRunCLI_FormatFlag(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)
	path := testutils.WriteIPA(t, tmp, "Demo.ipa", "Demo",
		testutils.BundleFields("com.example.demo", "4.0.1", "42"))

	var stdout, stderr bytes.Buffer
	if err := runCLI([]string{"appver", "--format", "json", path}, &stdout, &stderr); err != nil {
		t.Fatalf("runCLI() error: %v", err)
	}

	want := `{"id":"com.example.demo","versionName":"4.0.1","versionCode":42}` + "\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestRunCLI_ConfigFile(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)
	testutils.WriteFile(t, tmp, ".appver.yaml", []byte("format: yaml\nversion-code: strict\n"))

	dotted := testutils.WriteIPA(t, tmp, "Dotted.ipa", "Dotted",
		testutils.BundleFields("com.example.dotted", "1.0", "1.0.7"))

	var stdout, stderr bytes.Buffer
	err := runCLI([]string{"appver", dotted}, &stdout, &stderr)
	if !errors.Is(err, cli.ErrNoPackageInfo) {
		t.Fatalf("expected ErrNoPackageInfo under strict policy, got %v", err)
	}

	stdout.Reset()
	if err := runCLI([]string{"appver", "--version-code", "prefix", dotted}, &stdout, &stderr); err != nil {
		t.Fatalf("runCLI() error: %v", err)
	}
	if !strings.Contains(stdout.String(), "versionCode: 1") {
		t.Errorf("expected YAML output with versionCode 1, got %q", stdout.String())
	}
}

func TestRunCLI_Absence(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)

	tests := []struct {
		name string
		path string
	}{
		{"unsupported extension", testutils.WriteFile(t, tmp, "notes.txt", []byte("hi"))},
		{"no extension", testutils.WriteFile(t, tmp, "README", []byte("hi"))},
		{"missing ipa", filepath.Join(tmp, "missing.ipa")},
		{"corrupt apk", testutils.WriteFile(t, tmp, "broken.apk", []byte("garbage"))},
		{"ipa without info plist", testutils.WriteZip(t, tmp, "hollow.ipa", []testutils.ZipEntry{
			{Name: "Payload/Hollow.app/Hollow", Data: []byte("x")},
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := runCLI([]string{"appver", tt.path}, &stdout, &stderr)
			if !errors.Is(err, cli.ErrNoPackageInfo) {
				t.Fatalf("expected ErrNoPackageInfo, got %v", err)
			}
			if stdout.Len() != 0 {
				t.Errorf("expected no stdout, got %q", stdout.String())
			}
			if code := exitCode(err, &stderr); code != 1 {
				t.Errorf("exitCode() = %d, want 1", code)
			}
			if stderr.Len() != 0 {
				t.Errorf("expected no stderr for absence, got %q", stderr.String())
			}
		})
	}
}

func TestRunCLI_UsageErrors(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)
	path := testutils.WriteIPA(t, tmp, "Demo.ipa", "Demo",
		testutils.BundleFields("com.example.demo", "1.0", "1"))

	tests := []struct {
		name string
		args []string
	}{
		{"no path", []string{"appver"}},
		{"two paths", []string{"appver", path, path}},
		{"bad format", []string{"appver", "--format", "xml", path}},
		{"bad policy", []string{"appver", "--version-code", "round", path}},
		{"unknown flag", []string{"appver", "--bogus", path}},
		{"non-integer size", []string{"appver", "--max-entry-size", "big", path}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := runCLI(tt.args, &stdout, &stderr)
			if !errors.Is(err, cli.ErrUsage) {
				t.Fatalf("expected ErrUsage, got %v", err)
			}
			if code := exitCode(err, &stderr); code != 2 {
				t.Errorf("exitCode() = %d, want 2", code)
			}
			if !strings.Contains(stderr.String(), "appver:") {
				t.Errorf("expected error on stderr, got %q", stderr.String())
			}
			if strings.Contains(stderr.String(), "Incorrect Usage") {
				t.Errorf("usage error reported twice: %q", stderr.String())
			}
		})
	}
}

func TestRunCLI_InvalidConfig(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)
	testutils.WriteFile(t, tmp, ".appver.yaml", []byte("format: xml\n"))

	var stdout, stderr bytes.Buffer
	err := runCLI([]string{"appver", "x.ipa"}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected config error, got nil")
	}
	if code := exitCode(err, &stderr); code != 1 {
		t.Errorf("exitCode() = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "invalid format") {
		t.Errorf("unexpected stderr: %q", stderr.String())
	}
}

func TestExitCode_Success(t *testing.T) {
	var stderr bytes.Buffer
	if code := exitCode(nil, &stderr); code != 0 || stderr.Len() != 0 {
		t.Errorf("exitCode(nil) = %d, stderr %q", code, stderr.String())
	}
}
