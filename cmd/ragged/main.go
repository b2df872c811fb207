// Package main is the entry point for the ragged CLI.
package main

import (
	"context"
	"os"

	"github.com/yaklabco/ragged/internal/cli"
	"github.com/yaklabco/ragged/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	logger := logging.Default()
	ctx := logging.WithLogger(context.Background(), logger)

	if err := cli.NewRootCommand(info).ExecuteContext(ctx); err != nil {
		logger.Error("command failed", logging.FieldError, err)
		return cli.ExitCode(err)
	}

	return cli.ExitSuccess
}
