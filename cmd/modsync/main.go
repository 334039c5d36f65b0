package main

import (
	"os"

	"github.com/modsync-tools/modsync/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
