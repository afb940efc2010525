package main

import (
	"os"

	"github.com/hireboard-dev/hireboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
