package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title: "Course Roster",
		Meta: []MetaLine{
			{Label: "Course", Value: "Mathematics"},
			{Label: "Code", Value: "MAT101"},
		},
		Headers: []string{"Name", "Grade"},
		Rows: []map[string]string{
			{"Name": "Ada Lovelace", "Grade": "92.50"},
			{"Name": "Alan Turing", "Grade": "-"},
		},
		GeneratedAt: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestCSVExporter(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	// Two meta rows, a separator, the header and two data rows.
	require.Len(t, lines, 6)
	assert.Equal(t, "Course,Mathematics", lines[0])
	assert.Equal(t, "Name,Grade", lines[3])
	assert.Equal(t, "Ada Lovelace,92.50", lines[4])
}

func TestCSVExporterWithoutMeta(t *testing.T) {
	data := sampleDataset()
	data.Meta = nil
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "Name,Grade\n"))
}

func TestTextExporter(t *testing.T) {
	out, err := NewTextExporter().Render(sampleDataset())
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "COURSE ROSTER")
	assert.Contains(t, text, "Generated: 2024-05-01 10:30:00")
	assert.Contains(t, text, "Course: Mathematics")
	assert.Contains(t, text, "Ada Lovelace")
	// Columns are aligned, so both data rows start the grade column at the
	// same offset.
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var ada, alan string
	for _, line := range lines {
		if strings.HasPrefix(line, "Ada") {
			ada = line
		}
		if strings.HasPrefix(line, "Alan") {
			alan = line
		}
	}
	require.NotEmpty(t, ada)
	require.NotEmpty(t, alan)
	assert.Equal(t, strings.Index(ada, "92.50"), strings.Index(alan, "-"))
}

func TestHTMLExporter(t *testing.T) {
	out, err := NewHTMLExporter().Render(sampleDataset())
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<title>Course Roster</title>")
	assert.Contains(t, html, "<strong>Code:</strong> MAT101")
	assert.Contains(t, html, "<th>Name</th>")
	assert.Contains(t, html, "<td>Ada Lovelace</td>")
}

func TestHTMLExporterEscapesContent(t *testing.T) {
	data := sampleDataset()
	data.Rows = []map[string]string{{"Name": "<script>alert(1)</script>", "Grade": "1"}}
	out, err := NewHTMLExporter().Render(data)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>alert")
	assert.Contains(t, string(out), "&lt;script&gt;")
}

func TestPDFExporter(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Greater(t, len(out), 500)
}

func TestExportersRequireHeaders(t *testing.T) {
	empty := Dataset{}
	renderers := []Renderer{
		NewCSVExporter(), NewTextExporter(), NewHTMLExporter(), NewPDFExporter(),
	}
	for _, r := range renderers {
		_, err := r.Render(empty)
		assert.Error(t, err, r.Ext())
	}
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, "csv", NewCSVExporter().Ext())
	assert.Equal(t, "txt", NewTextExporter().Ext())
	assert.Equal(t, "html", NewHTMLExporter().Ext())
	assert.Equal(t, "pdf", NewPDFExporter().Ext())
}
