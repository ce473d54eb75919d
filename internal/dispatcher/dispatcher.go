// Package dispatcher routes a package path to the extractor for its format
// and normalizes every failure into a single "no result" outcome.
package dispatcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/indaco/appver/internal/extract/apk"
	"github.com/indaco/appver/internal/extract/ipa"
	"github.com/indaco/appver/internal/logging"
	"github.com/indaco/appver/internal/pkginfo"
	"go.uber.org/zap"
)

// ErrUnsupportedFormat is returned by Extract for paths whose extension has
// no registered extractor.
var ErrUnsupportedFormat = errors.New("unsupported package format")

// Dispatcher selects an extractor from the path's extension.
type Dispatcher struct {
	extractors map[pkginfo.Format]pkginfo.Extractor
	logger     *zap.SugaredLogger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithExtractor registers e for format, replacing the default.
// Registrations for FormatUnsupported are ignored.
func WithExtractor(format pkginfo.Format, e pkginfo.Extractor) Option {
	return func(d *Dispatcher) {
		if format.IsSupported() && e != nil {
			d.extractors[format] = e
		}
	}
}

// WithLogger sets the logger that receives absorbed failure causes.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a Dispatcher with the default IPA and APK extractors and the
// global logger.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		extractors: map[pkginfo.Format]pkginfo.Extractor{
			pkginfo.FormatIPA: ipa.New(),
			pkginfo.FormatAPK: apk.New(),
		},
		logger: logging.Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Lookup returns the package info for path, or false when the format is
// unsupported or extraction fails for any reason.
func (d *Dispatcher) Lookup(ctx context.Context, path string) (pkginfo.PackageInfo, bool) {
	info, err := d.Extract(ctx, path)
	if err != nil {
		d.logger.Debugw("no package info",
			"path", path,
			"format", pkginfo.DetectFormat(path).String(),
			"error", err,
		)
		return pkginfo.PackageInfo{}, false
	}
	return info, true
}

// Extract is Lookup with the failure cause preserved.
func (d *Dispatcher) Extract(ctx context.Context, path string) (pkginfo.PackageInfo, error) {
	format := pkginfo.DetectFormat(path)
	e, ok := d.extractors[format]
	if !ok {
		return pkginfo.PackageInfo{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
	return extract(ctx, e, path)
}

func extract(ctx context.Context, e pkginfo.Extractor, path string) (info pkginfo.PackageInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info = pkginfo.PackageInfo{}
			err = fmt.Errorf("extractor panic for %q: %v", path, r)
		}
	}()
	return e.Extract(ctx, path)
}
