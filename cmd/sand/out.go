package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/sandlang/sand/internal/parser"
	"github.com/sandlang/sand/internal/render"
)

func outCmd() *cobra.Command {
	var (
		input    string
		markdown bool
		pretty   bool
	)
	cmd := &cobra.Command{
		Use:   "out SELECTOR",
		Short: "Render a selector against a document",
		Long: `out parses the document, resolves SELECTOR and prints the rendered
content. A selector ending in a name prints one block; otherwise every
declared name is rendered under a [name] header.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
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

			sel, err := parser.ParseSelector(doc, args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %s\n", err)
				os.Exit(1)
			}

			outputs, err := render.Render(doc, sel, markdown || pretty)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %s\n", err)
				os.Exit(1)
			}
			printOutputs(doc.Names, outputs, pretty)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "document file, - for stdin")
	cmd.Flags().BoolVarP(&markdown, "markdown", "m", false, "emit section headings as markdown")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "render markdown for the terminal")
	cmd.MarkFlagRequired("input")
	return cmd
}

// readInput loads the document source. "-" reads stdin; the returned path
// names the source in diagnostics.
func readInput(input string) (src, path string, err error) {
	if input == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", err
		}
		return string(data), "<stdin>", nil
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return "", "", err
	}
	return string(data), input, nil
}

func printOutputs(names, outputs []string, pretty bool) {
	if len(outputs) == 1 {
		printBlock(outputs[0], pretty)
		return
	}
	for i, out := range outputs {
		fmt.Printf("[%s]\n", names[i])
		printBlock(out, pretty)
		if i < len(outputs)-1 {
			fmt.Println()
		}
	}
}

func printBlock(text string, pretty bool) {
	if pretty {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err == nil {
			if rendered, err := renderer.Render(text); err == nil {
				fmt.Println(strings.TrimRight(rendered, "\n"))
				return
			}
		}
		// Fall back to plain output when the terminal renderer fails.
	}
	fmt.Println(text)
}
