// Package main provides the catalogue CLI.
package main

import (
	"os"

	"github.com/mesh-intelligence/catalogue/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
