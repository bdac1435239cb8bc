// Package main is the entry point for the sheetboard CLI binary.
package main

import (
	"os"

	"sheetboard/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
