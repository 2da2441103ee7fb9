// Package main provides the CLI entrypoint for proto-matcher.
//
// proto-matcher pairs the types of an obfuscated protobuf schema with the
// types of a readable reference schema by their structure alone:
//   - Signs every message and enum into a name-independent signature
//   - Finds types whose signature is unique on both sides
//   - Ranks likely counterparts for everything else
//   - Walks both declaration orders to confirm matches one by one
//
// Without a subcommand it starts an interactive shell.
package main

import (
	"fmt"
	"os"

	"proto-matcher/internal/shell"
)

func main() {
	if err := shell.NewRootCommand(os.Stdin, os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
