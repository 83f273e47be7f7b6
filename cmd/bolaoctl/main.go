// Command bolaoctl is a developer tool for minting test tokens, checking the
// betting window and validating seed files.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "bolaoctl:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "bolaoctl",
		Usage: "developer utilities for the bolão service",
		Commands: []*cli.Command{
			newTokenCommand(),
			newLockCommand(),
			newSeedCommand(),
		},
	}
}
