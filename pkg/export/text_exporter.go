package export

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"
)

// TextExporter renders datasets as aligned plain text, suitable for
// terminals and logs.
type TextExporter struct{}

// NewTextExporter builds a plain-text exporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Ext returns the file extension for text output.
func (e *TextExporter) Ext() string { return "txt" }

// Render produces an aligned-column text rendering of the dataset.
func (e *TextExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("text requires at least one header")
	}
	buf := &bytes.Buffer{}

	if data.Title != "" {
		fmt.Fprintln(buf, strings.ToUpper(data.Title))
		fmt.Fprintln(buf, strings.Repeat("=", len(data.Title)))
	}
	if !data.GeneratedAt.IsZero() {
		fmt.Fprintf(buf, "Generated: %s\n", data.GeneratedAt.Format("2006-01-02 15:04:05"))
	}
	for _, m := range data.Meta {
		fmt.Fprintf(buf, "%s: %s\n", m.Label, m.Value)
	}
	fmt.Fprintln(buf)

	w := tabwriter.NewWriter(buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(data.Headers, "\t"))
	for _, row := range data.Rows {
		cells := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			cells[i] = row[header]
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("flush text table: %w", err)
	}
	return buf.Bytes(), nil
}
