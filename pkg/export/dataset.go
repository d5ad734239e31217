// Package export renders tabular datasets into the supported report
// encodings: csv, text, html and pdf.
package export

import "time"

// MetaLine is one label/value pair of a report's header block, such as a
// student's name above their transcript.
type MetaLine struct {
	Label string
	Value string
}

// Dataset defines tabular export content. Rows are keyed by header name so
// renderers stay independent of column order beyond Headers.
type Dataset struct {
	Title       string
	Meta        []MetaLine
	Headers     []string
	Rows        []map[string]string
	GeneratedAt time.Time
}

// Renderer turns a dataset into encoded bytes for one output format.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
	Ext() string
}
