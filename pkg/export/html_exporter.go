package export

import (
	"bytes"
	"fmt"
	"html/template"
)

const htmlReport = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
h1 { text-align: center; }
.meta { margin-bottom: 1em; color: #444; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #999; padding: 6px 10px; text-align: left; }
th { background: #e6e6e6; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if not .GeneratedAt.IsZero}}<p class="meta">Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>{{end}}
{{range .Meta}}<p class="meta"><strong>{{.Label}}:</strong> {{.Value}}</p>
{{end}}<table>
<tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
{{range $row := .Rows}}<tr>{{range $.Headers}}<td>{{index $row .}}</td>{{end}}</tr>
{{end}}</table>
</body>
</html>
`

var htmlTemplate = template.Must(template.New("report").Parse(htmlReport))

// HTMLExporter renders datasets as a standalone HTML document.
type HTMLExporter struct{}

// NewHTMLExporter builds an HTML exporter.
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{}
}

// Ext returns the file extension for HTML output.
func (e *HTMLExporter) Ext() string { return "html" }

// Render executes the report template over the dataset.
func (e *HTMLExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("html requires at least one header")
	}
	buf := &bytes.Buffer{}
	if err := htmlTemplate.Execute(buf, data); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}
