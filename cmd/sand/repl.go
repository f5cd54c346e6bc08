package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/sandlang/sand/internal/ast"
	"github.com/sandlang/sand/internal/parser"
	"github.com/sandlang/sand/internal/render"
)

const historyFile = ".sand_history"

func replCmd() *cobra.Command {
	var (
		input    string
		markdown bool
	)
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactively render selectors against a document",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if input == "-" {
				fmt.Fprintln(os.Stderr, "repl needs a file, not stdin")
				os.Exit(1)
			}
			src, path, err := readInput(input)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			doc, err := parser.Parse(src)
			if err != nil {
				printDiagnostics(path, src, err)
				os.Exit(1)
			}
			runRepl(path, doc, markdown)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "document file")
	cmd.Flags().BoolVarP(&markdown, "markdown", "m", false, "emit section headings as markdown")
	cmd.MarkFlagRequired("input")
	return cmd
}

func runRepl(path string, doc *ast.Document, markdown bool) {
	fmt.Printf("loaded %s, names: %s\n", path, strings.Join(doc.Names, ", "))
	fmt.Println("enter a selector (#. renders everything), or :names :reload :markdown :quit")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt("sand> ")
		if errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		if strings.HasPrefix(line, ":") {
			switch line {
			case ":quit":
				return
			case ":names":
				fmt.Println(strings.Join(doc.Names, ", "))
			case ":markdown":
				markdown = !markdown
				fmt.Printf("markdown %v\n", markdown)
			case ":reload":
				data, err := os.ReadFile(path)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					continue
				}
				next, err := parser.Parse(string(data))
				if err != nil {
					printDiagnostics(path, string(data), err)
					continue
				}
				doc = next
				fmt.Println("reloaded")
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}

		sel, err := parser.ParseSelector(doc, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			continue
		}
		outputs, err := render.Render(doc, sel, markdown)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			continue
		}
		printOutputs(doc.Names, outputs, false)
	}
}
