package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tonearm/internal/shared"
	"github.com/desertthunder/tonearm/internal/subsonic"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	logger := shared.NewLogger(nil)
	subsonic.ServerVersion = version

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "tonearm",
		Usage:    "Serve a local music library to Subsonic clients",
		Version:  version,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
