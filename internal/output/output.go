// Package output renders a PackageInfo as text, JSON, YAML or TOML.
package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/indaco/appver/internal/pkginfo"
	"github.com/indaco/appver/internal/printer"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/sjson"
)

// Format controls how a record is displayed.
type Format string

const (
	// FormatText outputs the human-readable three-line dump.
	FormatText Format = "text"

	// FormatJSON outputs a JSON object.
	FormatJSON Format = "json"

	// FormatYAML outputs a YAML document.
	FormatYAML Format = "yaml"

	// FormatTOML outputs a TOML document.
	FormatTOML Format = "toml"
)

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid returns true if the format is a known output format.
func (f Format) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatYAML, FormatTOML:
		return true
	default:
		return false
	}
}

// ParseFormat converts a string to a Format, returning FormatText as fallback.
func ParseFormat(s string) Format {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f.IsValid() {
		return f
	}
	return FormatText
}

// document is the structured shape shared by the YAML and TOML encoders.
type document struct {
	ID          string `yaml:"id" toml:"id"`
	VersionName string `yaml:"versionName" toml:"versionName"`
	VersionCode int64  `yaml:"versionCode" toml:"versionCode"`
}

// Formatter handles display of package info.
type Formatter struct {
	format Format
}

// NewFormatter creates a new Formatter with the specified output format.
func NewFormatter(format Format) *Formatter {
	if !format.IsValid() {
		format = FormatText
	}
	return &Formatter{format: format}
}

// Format renders info in the formatter's output format.
func (f *Formatter) Format(info pkginfo.PackageInfo) (string, error) {
	switch f.format {
	case FormatJSON:
		return formatJSON(info)
	case FormatYAML:
		return formatYAML(info)
	case FormatTOML:
		return formatTOML(info)
	default:
		return formatText(info), nil
	}
}

// Print renders info to w.
func (f *Formatter) Print(w io.Writer, info pkginfo.PackageInfo) error {
	s, err := f.Format(info)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

func formatText(info pkginfo.PackageInfo) string {
	var sb strings.Builder
	sb.WriteString(printer.Field("ApplicationID", info.ID))
	sb.WriteString("\n")
	sb.WriteString(printer.Field("VersionName", info.VersionName))
	sb.WriteString("\n")
	sb.WriteString(printer.Field("VersionCode", strconv.FormatInt(info.VersionCode, 10)))
	sb.WriteString("\n")
	return sb.String()
}

func formatJSON(info pkginfo.PackageInfo) (string, error) {
	out := "{}"
	var err error
	for _, kv := range []struct {
		path  string
		value any
	}{
		{"id", info.ID},
		{"versionName", info.VersionName},
		{"versionCode", info.VersionCode},
	} {
		out, err = sjson.Set(out, kv.path, kv.value)
		if err != nil {
			return "", fmt.Errorf("failed to encode %s as JSON: %w", kv.path, err)
		}
	}
	return out + "\n", nil
}

func formatYAML(info pkginfo.PackageInfo) (string, error) {
	data, err := yaml.Marshal(document(info))
	if err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	return string(data), nil
}

func formatTOML(info pkginfo.PackageInfo) (string, error) {
	data, err := toml.Marshal(document(info))
	if err != nil {
		return "", fmt.Errorf("failed to encode TOML: %w", err)
	}
	return string(data), nil
}
