package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type textStyle struct {
	style lipgloss.Style
}

// render styles s when stdout is a color terminal.
func (t textStyle) render(s string) string {
	if !colorEnabled() {
		return s
	}
	return t.style.Render(s)
}

var (
	styleHeader = textStyle{lipgloss.NewStyle().Bold(true)}
	styleError  = textStyle{lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)}
	styleDim    = textStyle{lipgloss.NewStyle().Foreground(lipgloss.Color("8"))}
)

// colorEnabled honours NO_COLOR and TERM=dumb.
func colorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal(os.Stdout)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

// defaultOutputFormat is table for terminals and json for pipes.
func defaultOutputFormat(w io.Writer) string {
	if isTerminal(w) {
		return "table"
	}
	return "json"
}

// getOutputFormat returns the effective output format from the root command's persistent flags.
func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func validateOutputFormat(output string) error {
	if output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", output)
	}
	return nil
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintTable writes rows under headers in aligned columns.
func PrintTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	pad := func(cells []string) []string {
		out := make([]string, len(widths))
		for i := range widths {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			if i < len(widths)-1 {
				cell += strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			}
			out[i] = cell
		}
		return out
	}

	_, _ = fmt.Fprintln(w, styleHeader.render(strings.Join(pad(headers), "  ")))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.TrimRight(strings.Join(pad(row), "  "), " "))
	}
}

// PrintDetail writes label/value pairs, one per line, skipping empty values.
func PrintDetail(w io.Writer, pairs [][2]string) {
	width := 0
	for _, p := range pairs {
		if p[1] != "" && len(p[0]) > width {
			width = len(p[0])
		}
	}
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		label := p[0] + ":" + strings.Repeat(" ", width-len(p[0]))
		_, _ = fmt.Fprintf(w, "%s %s\n", styleDim.render(label), p[1])
	}
}
