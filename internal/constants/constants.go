// Package constants provides shared constants used across the application
// to avoid circular dependencies between packages.
package constants

import "time"

// Timeout constants used across the application
const (
	// DefaultAPITimeout is the timeout for a single FastGPT request (answers with web search can take a while)
	DefaultAPITimeout = 120 * time.Second
)

// API defaults
const (
	// DefaultAPIURL is the Kagi FastGPT endpoint
	DefaultAPIURL = "https://kagi.com/api/v0/fastgpt"
	// AuthScheme is the prefix of the Authorization header value
	AuthScheme = "Bot"
)

// Application defaults
const (
	AppName            = "fastgpt"
	AppTitle           = "Kagi FastGPT CLI"
	Version            = "0.1.0"
	DefaultCache       = true
	DefaultReferences  = true
	DefaultPromptTitle = "FastGPT"
)

// MaxContextFileSize is the largest file accepted as conversation context (512KB)
const MaxContextFileSize = 512 * 1024

// SupportedExtensions are the file extensions accepted by /add-file, without the dot
var SupportedExtensions = []string{
	"txt", "md",
	"rs", "py", "js", "ts",
	"html", "css",
	"json", "xml", "yml", "yaml", "toml",
	"sh", "bat",
}
