package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandlang/sand/internal/ast"
	"github.com/sandlang/sand/internal/parser"
)

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse and validate a sand document",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			src := string(data)

			doc, err := parser.Parse(src)
			if err != nil {
				printDiagnostics(path, src, err)
				os.Exit(1)
			}

			fmt.Printf("names: %s\n", strings.Join(doc.Names, ", "))
			printOutline(src, doc.Root, 0)
		},
	}
}

// printOutline dumps one line per tree node, indented by depth.
func printOutline(src string, n ast.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch t := n.(type) {
	case *ast.Root:
		for _, c := range t.Children {
			printOutline(src, c, depth)
		}
	case *ast.Section:
		fmt.Printf("%ssection%s level=%d %q\n", indent, aliasSuffix(t.Alias), t.Level, t.Title)
		for _, c := range t.Children {
			printOutline(src, c, depth+1)
		}
	case *ast.Sentences:
		fmt.Printf("%ssentences%s\n", indent, aliasSuffix(t.Alias))
	case *ast.Filtered:
		targets := "all"
		if t.Targets != nil {
			targets = strings.Join(t.Targets, ", ")
		}
		fmt.Printf("%sfiltered%s (%s)\n", indent, aliasSuffix(t.Alias), targets)
	case *ast.Selector:
		fmt.Printf("%sselector%s %s\n", indent, aliasSuffix(t.Alias),
			strings.TrimSpace(src[t.Span.Start:t.Span.End]))
	}
}

func aliasSuffix(alias string) string {
	if alias == "" {
		return ""
	}
	return " #" + alias
}

// printDiagnostics writes every problem in err to stderr, one per line,
// in file:line:col form. Missing name declarations have no position worth
// pointing at, so those lines carry the file only.
func printDiagnostics(path, src string, err error) {
	var serr *parser.SyntaxError
	if errors.As(err, &serr) {
		line, col := lineCol(src, serr.Span.Start)
		fmt.Fprintf(os.Stderr, "%s:%d:%d: error: %s\n", path, line, col, serr.Error())
		return
	}
	var batch parser.Errors
	if errors.As(err, &batch) {
		for _, d := range batch {
			if d.Kind == parser.MissingNames {
				fmt.Fprintf(os.Stderr, "%s: error: %s\n", path, d.Message())
				continue
			}
			line, col := lineCol(src, d.Span.Start)
			fmt.Fprintf(os.Stderr, "%s:%d:%d: error: %s\n", path, line, col, d.Message())
		}
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

// lineCol converts a byte offset to 1-based line and column.
func lineCol(src string, off int) (line, col int) {
	if off > len(src) {
		off = len(src)
	}
	line, col = 1, 1
	for i := 0; i < off; i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
