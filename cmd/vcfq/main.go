// Package main provides the vcfq command-line tool.
package main

import (
	"fmt"
	"os"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	root := newRootCmd()
	root.Version = fmt.Sprintf("%s (%s) built %s", version, commit, date)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
