// Package main provides the entry point for the portalctl admin tool.
package main

import (
	"fmt"
	"os"

	"github.com/spec-kit/portal-service/cmd/portalctl/commands"
)

func main() {
	if err := commands.NewRootCommand(commands.OpenFromEnvironment).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
