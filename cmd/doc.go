// Package cmd implements the command-line surface of the FastGPT client.
//
// # Architecture
//
//   - root.go: App struct, cobra command setup, flags and config layering
//   - apikey.go: API key management flags and the interactive --config setup
//   - interactive.go: go-prompt REPL driver with slash command completion
//
// The question loop itself lives in internal/session. This package decides
// how input reaches it: a positional query runs once and exits, a terminal
// gets the go-prompt REPL, and piped stdin is read line by line.
//
// # Usage
//
//	func main() {
//	    cmd.Execute()
//	}
package cmd
