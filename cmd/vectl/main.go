// Package main provides the vectl CLI tool.
//
// Usage:
//
//	vectl [flags] <command> [args]
//
// Commands:
//
//	collections - Manage vector collections (list, create, info, delete)
//	add         - Ingest documents into a collection
//	query       - Semantic search over a collection
//	run         - Dispatch a request file through the agent
//	config      - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.vectl/config.yaml
//	Use 'vectl config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/vectl/vectl/cmd/vectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
