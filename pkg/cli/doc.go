// Package cli provides the shared plumbing for the vectl command-line
// tool.
//
// This package includes:
//   - Configuration management (named contexts, kubectl-style)
//   - Output formatting (YAML, JSON, table)
//   - Request file loading (YAML/JSON)
//
// Configuration is stored in ~/.vectl/config.yaml. A context bundles
// everything needed to talk to one vector backend and one embedding
// provider, so switching between a local Qdrant and a hosted one is a
// single `vectl config use-context`.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig()
//
//	ctx, err := cfg.GetCurrentContext()
//
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
