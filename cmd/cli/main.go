// Package main is the entry point for the flexidb CLI binary.
package main

import (
	"os"

	"flexidb/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
