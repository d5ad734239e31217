package models

import "time"

// ReportKind identifies a report shape.
type ReportKind string

// Supported report kinds.
const (
	ReportKindStudents   ReportKind = "students"
	ReportKindCourses    ReportKind = "courses"
	ReportKindTranscript ReportKind = "transcript"
	ReportKindRoster     ReportKind = "roster"
	ReportKindStatistics ReportKind = "statistics"
)

// ReportFormat identifies an output encoding.
type ReportFormat string

// Supported report formats.
const (
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatText ReportFormat = "text"
	ReportFormatHTML ReportFormat = "html"
	ReportFormatPDF  ReportFormat = "pdf"
)

// ReportArtifact captures a generated report file and its metadata. Format
// reflects the encoding actually produced, which may differ from the one
// requested when PDF is disabled.
type ReportArtifact struct {
	ID          string       `json:"id"`
	Kind        ReportKind   `json:"kind"`
	Format      ReportFormat `json:"format"`
	Path        string       `json:"path"`
	RecordCount int          `json:"record_count"`
	Notice      string       `json:"notice,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
}
