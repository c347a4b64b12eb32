package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/BrandonDHaskell/checkpoint/server/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !errors.Is(err, cli.ErrCheckInFailed) {
			fmt.Fprintf(os.Stderr, "checkpoint: %v\n", err)
		}
		os.Exit(1)
	}
}
