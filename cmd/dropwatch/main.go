// Package main is the entry point for the dropwatch CLI.
package main

import (
	"os"

	"github.com/jmylchreest/dropwatch/cmd/dropwatch/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
