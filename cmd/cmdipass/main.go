package main

import (
	"os"

	"cmdipass/cmd/cmdipass/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
