// Package main is the entry point for the intakeflow CLI.
package main

import (
	"os"

	"github.com/lunalabs/intakeflow/cmd/intakeflow/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
