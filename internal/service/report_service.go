package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"eduregistry/internal/models"
	apperrors "eduregistry/pkg/errors"
	"eduregistry/pkg/export"
)

type reportRecords interface {
	GetStudentTranscript(ctx context.Context, studentID int64) (*models.Transcript, error)
	GetCourseRoster(ctx context.Context, courseID int64) (*models.Roster, error)
	GetStatistics(ctx context.Context) (*models.Statistics, error)
}

type reportSummaries interface {
	StudentSummaries(ctx context.Context, status models.StudentStatus) ([]models.StudentSummary, error)
	CourseSummaries(ctx context.Context) ([]models.CourseSummary, error)
	TopCourses(ctx context.Context, limit int) ([]models.CoursePopularity, error)
	GradeDistribution(ctx context.Context) ([]models.GradeBucket, error)
}

type artifactStore interface {
	Save(name string, content []byte) (string, error)
	CleanupOlderThan(maxAge time.Duration) (int, error)
}

// ReportConfig tunes report generation.
type ReportConfig struct {
	PDFEnabled bool
	ResultTTL  time.Duration
}

// ReportRequest names the report to generate. StudentID is required for
// transcripts, CourseID for rosters. Status optionally narrows the
// students report.
type ReportRequest struct {
	Kind      models.ReportKind
	Format    models.ReportFormat
	StudentID int64
	CourseID  int64
	Status    models.StudentStatus
}

// ReportService builds report datasets and persists rendered artifacts.
type ReportService struct {
	records   reportRecords
	summaries reportSummaries
	storage   artifactStore
	renderers map[models.ReportFormat]export.Renderer
	logger    *zap.Logger
	cfg       ReportConfig
}

// NewReportService constructs a ReportService. PDF rendering is registered
// only when enabled in the config; requests for it then degrade to CSV.
func NewReportService(records reportRecords, summaries reportSummaries, storage artifactStore, cfg ReportConfig, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	renderers := map[models.ReportFormat]export.Renderer{
		models.ReportFormatCSV:  export.NewCSVExporter(),
		models.ReportFormatText: export.NewTextExporter(),
		models.ReportFormatHTML: export.NewHTMLExporter(),
	}
	if cfg.PDFEnabled {
		renderers[models.ReportFormatPDF] = export.NewPDFExporter()
	}
	return &ReportService{
		records:   records,
		summaries: summaries,
		storage:   storage,
		renderers: renderers,
		logger:    logger,
		cfg:       cfg,
	}
}

// AvailableFormats lists the registered output encodings, sorted.
func (s *ReportService) AvailableFormats() []string {
	formats := make([]string, 0, len(s.renderers))
	for format := range s.renderers {
		formats = append(formats, string(format))
	}
	sort.Strings(formats)
	return formats
}

// Generate builds the requested report, renders it and writes the artifact
// under the output directory. The returned artifact carries the format
// actually produced: a PDF request degrades to CSV when PDF rendering is
// disabled, with a notice saying so.
func (s *ReportService) Generate(ctx context.Context, req ReportRequest) (*models.ReportArtifact, error) {
	format := req.Format
	if format == "" {
		format = models.ReportFormatCSV
	}
	notice := ""
	if format == models.ReportFormatPDF && !s.cfg.PDFEnabled {
		format = models.ReportFormatCSV
		notice = "pdf rendering disabled, produced csv instead"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, apperrors.Clone(apperrors.ErrUnsupportedFormat,
			fmt.Sprintf("format %q not supported, available: %s", req.Format, strings.Join(s.AvailableFormats(), ", ")))
	}

	dataset, err := s.buildDataset(ctx, req)
	if err != nil {
		return nil, err
	}
	dataset.GeneratedAt = time.Now()

	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStore.Code, fmt.Sprintf("render %s report", req.Kind))
	}

	filename := fmt.Sprintf("%s_%s.%s", req.Kind, dataset.GeneratedAt.Format("20060102_150405"), renderer.Ext())
	path, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStore.Code, "save report artifact")
	}

	artifact := &models.ReportArtifact{
		ID:          uuid.NewString(),
		Kind:        req.Kind,
		Format:      format,
		Path:        path,
		RecordCount: len(dataset.Rows),
		Notice:      notice,
		GeneratedAt: dataset.GeneratedAt,
	}
	s.logger.Info("report generated",
		zap.String("id", artifact.ID),
		zap.String("kind", string(artifact.Kind)),
		zap.String("format", string(artifact.Format)),
		zap.Int("records", artifact.RecordCount),
		zap.String("path", artifact.Path))
	return artifact, nil
}

// CleanupOldReports removes artifacts older than the given age, defaulting
// to the configured retention when zero.
func (s *ReportService) CleanupOldReports(olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		olderThan = s.cfg.ResultTTL
	}
	removed, err := s.storage.CleanupOlderThan(olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrStore.Code, "cleanup report artifacts")
	}
	if removed > 0 {
		s.logger.Info("stale report artifacts removed", zap.Int("count", removed))
	}
	return removed, nil
}

func (s *ReportService) buildDataset(ctx context.Context, req ReportRequest) (export.Dataset, error) {
	switch req.Kind {
	case models.ReportKindStudents:
		return s.buildStudentsDataset(ctx, req.Status)
	case models.ReportKindCourses:
		return s.buildCoursesDataset(ctx)
	case models.ReportKindTranscript:
		return s.buildTranscriptDataset(ctx, req.StudentID)
	case models.ReportKindRoster:
		return s.buildRosterDataset(ctx, req.CourseID)
	case models.ReportKindStatistics:
		return s.buildStatisticsDataset(ctx)
	default:
		return export.Dataset{}, apperrors.Clone(apperrors.ErrValidation,
			fmt.Sprintf("unknown report kind %q", req.Kind))
	}
}

func (s *ReportService) buildStudentsDataset(ctx context.Context, status models.StudentStatus) (export.Dataset, error) {
	rows, err := s.summaries.StudentSummaries(ctx, status)
	if err != nil {
		return export.Dataset{}, err
	}
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		dataRows = append(dataRows, map[string]string{
			"ID":              fmt.Sprintf("%d", row.ID),
			"Name":            row.FullName(),
			"Email":           row.Email,
			"Status":          string(row.Status),
			"Enrollment Date": row.EnrollmentDate.Format("2006-01-02"),
			"Total Courses":   fmt.Sprintf("%d", row.TotalCourses),
			"Completed":       fmt.Sprintf("%d", row.CompletedCourses),
			"Average Grade":   fmt.Sprintf("%.2f", row.AverageGrade),
		})
	}
	title := "Student Report"
	if status != "" {
		title = fmt.Sprintf("Student Report (%s)", status)
	}
	return export.Dataset{
		Title:   title,
		Headers: []string{"ID", "Name", "Email", "Status", "Enrollment Date", "Total Courses", "Completed", "Average Grade"},
		Rows:    dataRows,
	}, nil
}

func (s *ReportService) buildCoursesDataset(ctx context.Context) (export.Dataset, error) {
	rows, err := s.summaries.CourseSummaries(ctx)
	if err != nil {
		return export.Dataset{}, err
	}
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		dataRows = append(dataRows, map[string]string{
			"ID":            fmt.Sprintf("%d", row.ID),
			"Name":          row.Name,
			"Code":          row.Code,
			"Credits":       fmt.Sprintf("%d", row.Credits),
			"Semester":      row.Semester,
			"Instructor":    row.Instructor,
			"Enrolled":      fmt.Sprintf("%d/%d", row.Enrolled, row.Capacity),
			"Completed":     fmt.Sprintf("%d", row.Completed),
			"Average Grade": fmt.Sprintf("%.2f", row.AverageGrade),
		})
	}
	return export.Dataset{
		Title:   "Course Report",
		Headers: []string{"ID", "Name", "Code", "Credits", "Semester", "Instructor", "Enrolled", "Completed", "Average Grade"},
		Rows:    dataRows,
	}, nil
}

func (s *ReportService) buildTranscriptDataset(ctx context.Context, studentID int64) (export.Dataset, error) {
	if studentID <= 0 {
		return export.Dataset{}, apperrors.Clone(apperrors.ErrValidation, "student id required for transcript report")
	}
	transcript, err := s.records.GetStudentTranscript(ctx, studentID)
	if err != nil {
		return export.Dataset{}, err
	}
	if transcript == nil {
		return export.Dataset{}, apperrors.Clone(apperrors.ErrNotFound,
			fmt.Sprintf("student %d not found", studentID))
	}
	dataRows := make([]map[string]string, 0, len(transcript.Courses))
	for _, entry := range transcript.Courses {
		dataRows = append(dataRows, map[string]string{
			"Course":          entry.CourseName,
			"Code":            entry.CourseCode,
			"Credits":         fmt.Sprintf("%d", entry.Credits),
			"Instructor":      entry.Instructor,
			"Grade":           formatGrade(entry.Grade),
			"Status":          string(entry.Status),
			"Enrollment Date": entry.EnrollmentDate.Format("2006-01-02"),
		})
	}
	return export.Dataset{
		Title: "Academic Transcript",
		Meta: []export.MetaLine{
			{Label: "Student", Value: transcript.Student.FullName()},
			{Label: "Email", Value: transcript.Student.Email},
			{Label: "Status", Value: string(transcript.Student.Status)},
			{Label: "GPA", Value: fmt.Sprintf("%.2f", transcript.GPA)},
			{Label: "Credits Earned", Value: fmt.Sprintf("%d", transcript.TotalCredits)},
		},
		Headers: []string{"Course", "Code", "Credits", "Instructor", "Grade", "Status", "Enrollment Date"},
		Rows:    dataRows,
	}, nil
}

func (s *ReportService) buildRosterDataset(ctx context.Context, courseID int64) (export.Dataset, error) {
	if courseID <= 0 {
		return export.Dataset{}, apperrors.Clone(apperrors.ErrValidation, "course id required for roster report")
	}
	roster, err := s.records.GetCourseRoster(ctx, courseID)
	if err != nil {
		return export.Dataset{}, err
	}
	if roster == nil {
		return export.Dataset{}, apperrors.Clone(apperrors.ErrNotFound,
			fmt.Sprintf("course %d not found", courseID))
	}
	dataRows := make([]map[string]string, 0, len(roster.Students))
	for _, entry := range roster.Students {
		dataRows = append(dataRows, map[string]string{
			"First Name":      entry.FirstName,
			"Last Name":       entry.LastName,
			"Email":           entry.Email,
			"Grade":           formatGrade(entry.Grade),
			"Status":          string(entry.Status),
			"Enrollment Date": entry.EnrollmentDate.Format("2006-01-02"),
		})
	}
	return export.Dataset{
		Title: "Course Roster",
		Meta: []export.MetaLine{
			{Label: "Course", Value: roster.Course.Name},
			{Label: "Code", Value: roster.Course.Code},
			{Label: "Instructor", Value: roster.Course.Instructor},
			{Label: "Semester", Value: roster.Course.Semester},
			{Label: "Enrolled", Value: fmt.Sprintf("%d/%d", roster.EnrolledCount, roster.Course.Capacity)},
		},
		Headers: []string{"First Name", "Last Name", "Email", "Grade", "Status", "Enrollment Date"},
		Rows:    dataRows,
	}, nil
}

func (s *ReportService) buildStatisticsDataset(ctx context.Context) (export.Dataset, error) {
	stats, err := s.records.GetStatistics(ctx)
	if err != nil {
		return export.Dataset{}, err
	}
	top, err := s.summaries.TopCourses(ctx, 5)
	if err != nil {
		return export.Dataset{}, err
	}
	buckets, err := s.summaries.GradeDistribution(ctx)
	if err != nil {
		return export.Dataset{}, err
	}

	rows := []map[string]string{
		{"Metric": "Total Students", "Value": fmt.Sprintf("%d", stats.TotalStudents)},
		{"Metric": "Active Students", "Value": fmt.Sprintf("%d", stats.ActiveStudents)},
		{"Metric": "Graduated Students", "Value": fmt.Sprintf("%d", stats.GraduatedStudents)},
		{"Metric": "Total Courses", "Value": fmt.Sprintf("%d", stats.TotalCourses)},
		{"Metric": "Total Enrollments", "Value": fmt.Sprintf("%d", stats.TotalEnrollments)},
		{"Metric": "Active Enrollments", "Value": fmt.Sprintf("%d", stats.ActiveEnrollments)},
		{"Metric": "Completed Courses", "Value": fmt.Sprintf("%d", stats.CompletedCourses)},
		{"Metric": "Average Grade", "Value": fmt.Sprintf("%.2f", stats.AverageGrade)},
	}
	if stats.MostPopularCourse != nil {
		rows = append(rows, map[string]string{
			"Metric": "Most Popular Course",
			"Value":  fmt.Sprintf("%s (%s): %d enrollments", stats.MostPopularCourse.Name, stats.MostPopularCourse.Code, stats.MostPopularCourse.Enrollments),
		})
	}
	for i, course := range top {
		rows = append(rows, map[string]string{
			"Metric": fmt.Sprintf("Top Course %d", i+1),
			"Value":  fmt.Sprintf("%s (%s): %d enrollments", course.Name, course.Code, course.Enrollments),
		})
	}
	for _, bucket := range buckets {
		rows = append(rows, map[string]string{
			"Metric": "Grades " + bucket.Label,
			"Value":  fmt.Sprintf("%d", bucket.Count),
		})
	}
	return export.Dataset{
		Title:   "System Statistics",
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}, nil
}

func formatGrade(grade *float64) string {
	if grade == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *grade)
}
