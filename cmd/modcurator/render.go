// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/modcurator/modcurator/internal/config"
)

const markdownWidth = 100

// renderMarkdown renders md with the glamour style matching the configured
// color scheme and writes it to w.
func renderMarkdown(w io.Writer, cfg *config.Config, md string) error {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(markdownWidth)}
	switch cfg.UI.ColorScheme {
	case config.ColorSchemeDark, config.ColorSchemeLight:
		opts = append(opts, glamour.WithStandardStyle(cfg.UI.ColorScheme.String()))
	default:
		opts = append(opts, glamour.WithAutoStyle())
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return err
	}
	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// markdownList renders items as a numbered list under title.
func markdownList(title string, items []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", title)
	for i, item := range items {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, escapeMarkdown(item))
	}
	return sb.String()
}

// markdownTable renders rows as a table with the given header.
func markdownTable(header []string, rows [][]string) string {
	var sb strings.Builder
	sb.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = escapeMarkdown(c)
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return sb.String()
}

var markdownEscaper = strings.NewReplacer(`|`, `\|`, `*`, `\*`, `_`, `\_`, "`", "\\`")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
