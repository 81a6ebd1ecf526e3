// Package main provides the entry point for the dwhops CLI tool.
//
// dwhops synthesizes and deploys the data warehouse stack and operates its
// pipeline. It is a thin wrapper around the dwhops library, adding:
//   - Command-line flag parsing
//   - Interactive confirmation prompts
//   - Dry-run visualization
//
// For programmatic access, import the library directly:
//
//	import "github.com/koljamaier/aws-dwh/dwhops/stackops"
package main

import (
	"github.com/koljamaier/aws-dwh/cmd/dwhops/cmd"
)

func main() {
	cmd.Execute()
}
