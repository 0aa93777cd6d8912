package main

import (
	"os"

	"github.com/ayusman/fingerfold/cmd/fingerfold/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
