// Package cli builds the appver root command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/indaco/appver/internal/archive"
	"github.com/indaco/appver/internal/config"
	"github.com/indaco/appver/internal/dispatcher"
	"github.com/indaco/appver/internal/extract/apk"
	"github.com/indaco/appver/internal/extract/ipa"
	"github.com/indaco/appver/internal/logging"
	"github.com/indaco/appver/internal/output"
	"github.com/indaco/appver/internal/pkginfo"
	"github.com/indaco/appver/internal/printer"
	"github.com/indaco/appver/internal/version"
	urfavecli "github.com/urfave/cli/v3"
)

var (
	// ErrNoPackageInfo is returned when the package yields no record.
	// Nothing is written to stdout in that case.
	ErrNoPackageInfo = errors.New("no package info")

	// ErrUsage is returned for invalid arguments or flag values.
	ErrUsage = errors.New("usage error")
)

// New builds and returns the root CLI command. Flags default to the values
// in cfg; stdout receives the rendered record, stderr receives diagnostics.
func New(cfg *config.Config, stdout, stderr io.Writer) *urfavecli.Command {
	var (
		verbose bool
		noColor bool
	)

	return &urfavecli.Command{
		Name:      "appver",
		Version:   version.GetVersion(),
		Usage:     "Print the application id and version of an APK or IPA",
		ArgsUsage: "<package.apk|package.ipa>",
		UsageText: `appver [options] <package>

Reads the application id, version name and version code from an Android
package (.apk) or an iOS application archive (.ipa). Prints nothing and
exits with status 1 when the file is unsupported or cannot be read.`,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, yaml, toml",
				Value:   cfg.OutputFormat().String(),
			},
			&urfavecli.StringFlag{
				Name:  "version-code",
				Usage: "CFBundleVersion coercion: prefix (leading digits, 0 if none) or strict (whole value must be an integer)",
				Value: cfg.Policy().String(),
			},
			&urfavecli.Int64Flag{
				Name:  "max-entry-size",
				Usage: "Maximum Info.plist size in bytes",
				Value: cfg.MaxEntrySize,
			},
			&urfavecli.BoolFlag{
				Name:        "verbose",
				Usage:       "Log why a package yields no result (stderr)",
				Value:       cfg.Verbose,
				Destination: &verbose,
			},
			&urfavecli.BoolFlag{
				Name:        "no-color",
				Usage:       "Disable colored output",
				Value:       cfg.NoColor,
				Destination: &noColor,
			},
		},
		OnUsageError: func(ctx context.Context, cmd *urfavecli.Command, err error, isSubcommand bool) error {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		},
		Before: func(ctx context.Context, cmd *urfavecli.Command) (context.Context, error) {
			printer.SetNoColor(noColor || !printer.IsTerminal(stdout))

			logging.Init(logging.New(verbose, stderr).Sugar())
			return ctx, nil
		},
		After: func(ctx context.Context, cmd *urfavecli.Command) error {
			_ = logging.Logger().Sync()
			return nil
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return run(ctx, cmd, stdout)
		},
	}
}

func run(ctx context.Context, cmd *urfavecli.Command, stdout io.Writer) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("%w: expected exactly one package path, got %d", ErrUsage, cmd.Args().Len())
	}
	path := cmd.Args().First()

	opts := Options{
		Format:       output.Format(strings.ToLower(cmd.String("format"))),
		Policy:       ipa.Policy(strings.ToLower(cmd.String("version-code"))),
		MaxEntrySize: cmd.Int64("max-entry-size"),
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	info, ok := NewDispatcher(opts).Lookup(ctx, path)
	if !ok {
		return ErrNoPackageInfo
	}

	return output.NewFormatter(opts.Format).Print(stdout, info)
}

// Options are the resolved extraction and output settings.
type Options struct {
	Format       output.Format
	Policy       ipa.Policy
	MaxEntrySize int64
}

// Validate rejects unknown enum values and negative sizes.
func (o Options) Validate() error {
	if !o.Format.IsValid() {
		return fmt.Errorf("%w: invalid format %q", ErrUsage, o.Format)
	}
	if !o.Policy.IsValid() {
		return fmt.Errorf("%w: invalid version-code %q", ErrUsage, o.Policy)
	}
	if o.MaxEntrySize < 0 {
		return fmt.Errorf("%w: invalid max-entry-size %d", ErrUsage, o.MaxEntrySize)
	}
	return nil
}

// NewDispatcher wires the IPA and APK extractors for opts.
func NewDispatcher(opts Options) *dispatcher.Dispatcher {
	return dispatcher.New(
		dispatcher.WithExtractor(pkginfo.FormatIPA, ipa.New(
			ipa.WithPolicy(opts.Policy),
			ipa.WithScanner(archive.NewScanner(opts.MaxEntrySize)),
		)),
		dispatcher.WithExtractor(pkginfo.FormatAPK, apk.New()),
		dispatcher.WithLogger(logging.Logger()),
	)
}
