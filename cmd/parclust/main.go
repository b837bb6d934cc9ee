package main

import (
	"os"

	"github.com/exascience/parclust/cmd"
)

func main() {
	if err := cmd.NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
