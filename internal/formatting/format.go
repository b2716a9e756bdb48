// Package formatting renders ledger status and pass summaries for the CLI
// as tables, JSON or YAML.
package formatting

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"sigs.k8s.io/yaml"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(name)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want table, json or yaml)", name)
	}
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Color  bool // Enable colored table headers
}

// Tabular is a value that can be rendered as a table as well as serialized.
type Tabular interface {
	Title() string
	Header() table.Row
	Rows() []table.Row
}

// Write renders v to w in the configured format.
func Write(w io.Writer, opts Options, v Tabular) error {
	switch opts.Format {
	case FormatJSON:
		_, err := fmt.Fprintln(w, PrettyJSON(v))
		return err
	case FormatYAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		return writeTable(w, opts, v)
	}
}

func writeTable(w io.Writer, opts Options, v Tabular) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	if title := v.Title(); title != "" {
		t.SetTitle(title)
	}

	header := v.Header()
	if opts.Color {
		colored := make(table.Row, len(header))
		for i, h := range header {
			colored[i] = text.FgHiCyan.Sprint(h)
		}
		header = colored
	}
	t.AppendHeader(header)
	t.AppendRows(v.Rows())
	t.Render()
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
