// Command guitarhero is a terminal rhythm game with deterministic replay.
package main

import (
	"fmt"
	"os"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
