package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandlang/sand/internal/lsp"
)

func lspCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server over stdio",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			// Stdout carries the protocol; logs go to stderr.
			log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

			srv := lsp.NewServer(os.Stdin, os.Stdout, log)
			if err := srv.Run(); err != nil {
				log.Error("lsp server error", "error", err)
				os.Exit(1)
			}
		},
	}
}
