// Package main provides the entry point for the contriblens CLI.
package main

import (
	"os"

	"github.com/contriblens/contriblens/cmd/contriblens/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
