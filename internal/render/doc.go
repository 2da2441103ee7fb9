// Package render formats signatures, scores and match lists as plain text
// for the interactive shell.
package render
