// Package shell is the interactive front end of the matcher. The same cobra
// command tree serves as command-line subcommands and as the commands of a
// read-eval-print loop, so "proto-matcher search Foo" and typing "s Foo" at
// the prompt run the same code.
package shell
