package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/mrlokans/bookshelf/internal/cli"
	"github.com/mrlokans/bookshelf/internal/config"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// Local overrides first; variables already set in the environment win.
	_ = godotenv.Load(".env.local", ".env")

	runner := cli.NewRunner(cli.RunnerOpts{
		Config:  config.NewConfig(),
		Version: Version,
	})

	if err := runner.Command().Run(context.Background(), os.Args); err != nil {
		log.Fatal("bookshelf failed", "err", err, "commit", Commit)
	}
}
