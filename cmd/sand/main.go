// Package main is the entry point for the sand CLI. A sand document carries
// parallel content for several named targets in one source file; the CLI
// parses, validates and renders such documents, and hosts the language
// server and the HTTP render service.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:   "sand",
		Short: "Parse and render multi-target sand documents",
		Long: `sand parses documents that carry parallel content for several named
targets and renders each target's projection.

Examples:
  sand parse doc.sand
  sand out '#.intro.en' --input doc.sand
  sand repl --input doc.sand`,
		Version:      version,
		SilenceUsage: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(parseCmd())
	root.AddCommand(outCmd())
	root.AddCommand(completionsCmd())
	root.AddCommand(lspCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(replCmd())

	// Commands report their own failures and exit 1; anything Execute
	// returns is a usage problem.
	if err := root.Execute(); err != nil {
		os.Exit(2)
	}
}
