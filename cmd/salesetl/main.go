// Package main is the entry point for salesetl.
package main

import (
	"fmt"
	"os"

	"salesetl/internal/cli"

	// Register every warehouse backend; the config selects one.
	_ "salesetl/internal/storage/all"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
