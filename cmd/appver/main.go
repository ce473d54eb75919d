package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/indaco/appver/internal/cli"
	"github.com/indaco/appver/internal/config"
	"github.com/indaco/appver/internal/printer"
)

func main() {
	os.Exit(exitCode(runCLI(os.Args, os.Stdout, os.Stderr), os.Stderr))
}

// runCLI loads the configuration and runs the root command with args.
func runCLI(args []string, stdout, stderr io.Writer) error {
	cfg, err := config.LoadConfigFn()
	if err != nil {
		return err
	}
	return cli.New(cfg, stdout, stderr).Run(context.Background(), args)
}

// exitCode maps a run error to the process status, reporting it on stderr
// unless it is the silent "no result" case.
func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cli.ErrNoPackageInfo):
		return 1
	case errors.Is(err, cli.ErrUsage):
		printer.PrintError(stderr, fmt.Sprintf("appver: %v", err))
		return 2
	default:
		printer.PrintError(stderr, fmt.Sprintf("appver: %v", err))
		return 1
	}
}
