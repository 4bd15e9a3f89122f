package main

import (
	"os"

	"github.com/wudi/pdftoolkit/cmd/pdftoolkit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
