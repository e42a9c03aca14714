package main

import (
	"os"

	"github.com/callan/sweep/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
