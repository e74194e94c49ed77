// Package main is the entry point for tmanagement.
package main

import "github.com/annybogatova/tmanagement/cmd"

// Build-time variables (set via -ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	builtBy   = "manual"
)

func main() {
	cmd.Execute(version, commit, buildTime, builtBy)
}
