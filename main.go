package main

import (
	"os"

	"github.com/aaronzipp/wargame-turns/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
