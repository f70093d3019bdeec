// Package main is the entry point for the lakewriter CLI binary.
package main

import (
	"os"

	"lakewriter/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
