// Package main is the entry point for the covtrack CLI binary.
package main

import (
	"os"

	cli "covtrack/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
