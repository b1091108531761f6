package main

import (
	"fmt"
	"os"

	"clientdesk.org/cmd/clientdesk/cli"
)

// Overridden at build time with -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cli.Execute(version, commit, date); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
