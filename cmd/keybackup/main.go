package main

import (
	"os"

	"keybackup/cmd/keybackup/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
