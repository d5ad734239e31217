package service

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduregistry/internal/models"
	apperrors "eduregistry/pkg/errors"
	"eduregistry/pkg/storage"
)

type recordsStub struct{}

func (recordsStub) GetStudentTranscript(ctx context.Context, studentID int64) (*models.Transcript, error) {
	if studentID != 1 {
		return nil, nil
	}
	grade := 90.0
	return &models.Transcript{
		Student: models.Student{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Status: models.StudentStatusActive},
		Courses: []models.TranscriptEntry{
			{CourseName: "Mathematics", CourseCode: "MAT101", Credits: 3, Grade: &grade, Status: models.EnrollmentStatusCompleted, EnrollmentDate: time.Now()},
		},
		GPA:          90.0,
		TotalCredits: 3,
	}, nil
}

func (recordsStub) GetCourseRoster(ctx context.Context, courseID int64) (*models.Roster, error) {
	if courseID != 1 {
		return nil, nil
	}
	return &models.Roster{
		Course: models.Course{ID: 1, Name: "Mathematics", Code: "MAT101", Capacity: 30},
		Students: []models.RosterEntry{
			{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Status: models.EnrollmentStatusEnrolled, EnrollmentDate: time.Now()},
		},
		EnrolledCount: 1,
	}, nil
}

func (recordsStub) GetStatistics(ctx context.Context) (*models.Statistics, error) {
	return &models.Statistics{
		TotalStudents:    2,
		ActiveStudents:   2,
		TotalCourses:     1,
		TotalEnrollments: 1,
		AverageGrade:     90,
		MostPopularCourse: &models.CoursePopularity{
			CourseID: 1, Name: "Mathematics", Code: "MAT101", Enrollments: 1,
		},
	}, nil
}

type summariesStub struct{}

func (summariesStub) StudentSummaries(ctx context.Context, status models.StudentStatus) ([]models.StudentSummary, error) {
	rows := []models.StudentSummary{
		{
			Student:      models.Student{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Status: models.StudentStatusActive, EnrollmentDate: time.Now()},
			TotalCourses: 1, CompletedCourses: 1, AverageGrade: 90,
		},
		{
			Student:      models.Student{ID: 2, FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", Status: models.StudentStatusGraduated, EnrollmentDate: time.Now()},
			TotalCourses: 0,
		},
	}
	if status == "" {
		return rows, nil
	}
	var filtered []models.StudentSummary
	for _, r := range rows {
		if r.Status == status {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func (summariesStub) CourseSummaries(ctx context.Context) ([]models.CourseSummary, error) {
	return []models.CourseSummary{
		{Course: models.Course{ID: 1, Name: "Mathematics", Code: "MAT101", Credits: 3, Capacity: 30}, Enrolled: 1, Completed: 1, AverageGrade: 90},
	}, nil
}

func (summariesStub) TopCourses(ctx context.Context, limit int) ([]models.CoursePopularity, error) {
	return []models.CoursePopularity{
		{CourseID: 1, Name: "Mathematics", Code: "MAT101", Enrollments: 1},
	}, nil
}

func (summariesStub) GradeDistribution(ctx context.Context) ([]models.GradeBucket, error) {
	return []models.GradeBucket{{Label: "A (90-100)", Count: 1}}, nil
}

func newReportServiceForTest(t *testing.T, pdfEnabled bool) (*ReportService, string) {
	t.Helper()
	dir := t.TempDir()
	files, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	svc := NewReportService(recordsStub{}, summariesStub{}, files, ReportConfig{
		PDFEnabled: pdfEnabled,
		ResultTTL:  time.Hour,
	}, nil)
	return svc, dir
}

func TestGenerateStudentsReportCSV(t *testing.T) {
	svc, dir := newReportServiceForTest(t, true)

	artifact, err := svc.Generate(context.Background(), ReportRequest{
		Kind:   models.ReportKindStudents,
		Format: models.ReportFormatCSV,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, artifact.ID)
	assert.Equal(t, models.ReportFormatCSV, artifact.Format)
	assert.Equal(t, 2, artifact.RecordCount)
	assert.Empty(t, artifact.Notice)
	assert.Regexp(t, regexp.MustCompile(`students_\d{8}_\d{6}\.csv$`), artifact.Path)

	content, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "ada@example.com")
	assert.Equal(t, dir, filepath.Dir(artifact.Path))
}

func TestGenerateStudentsReportFiltersByStatus(t *testing.T) {
	svc, _ := newReportServiceForTest(t, true)

	artifact, err := svc.Generate(context.Background(), ReportRequest{
		Kind:   models.ReportKindStudents,
		Format: models.ReportFormatCSV,
		Status: models.StudentStatusGraduated,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, artifact.RecordCount)
}

func TestGenerateTranscriptReportFormats(t *testing.T) {
	svc, _ := newReportServiceForTest(t, true)
	ctx := context.Background()

	for _, format := range []models.ReportFormat{
		models.ReportFormatCSV, models.ReportFormatText, models.ReportFormatHTML, models.ReportFormatPDF,
	} {
		artifact, err := svc.Generate(ctx, ReportRequest{
			Kind:      models.ReportKindTranscript,
			Format:    format,
			StudentID: 1,
		})
		require.NoError(t, err, string(format))
		assert.Equal(t, format, artifact.Format)

		info, err := os.Stat(artifact.Path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestGenerateTranscriptMissingStudent(t *testing.T) {
	svc, _ := newReportServiceForTest(t, true)

	_, err := svc.Generate(context.Background(), ReportRequest{
		Kind:      models.ReportKindTranscript,
		Format:    models.ReportFormatCSV,
		StudentID: 42,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGeneratePDFDegradesWhenDisabled(t *testing.T) {
	svc, _ := newReportServiceForTest(t, false)

	artifact, err := svc.Generate(context.Background(), ReportRequest{
		Kind:   models.ReportKindStatistics,
		Format: models.ReportFormatPDF,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportFormatCSV, artifact.Format)
	assert.NotEmpty(t, artifact.Notice)
	assert.Regexp(t, regexp.MustCompile(`statistics_\d{8}_\d{6}\.csv$`), artifact.Path)
}

func TestGenerateUnsupportedFormat(t *testing.T) {
	svc, _ := newReportServiceForTest(t, false)

	_, err := svc.Generate(context.Background(), ReportRequest{
		Kind:   models.ReportKindCourses,
		Format: "xml",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "csv, html, text")
}

func TestAvailableFormats(t *testing.T) {
	withPDF, _ := newReportServiceForTest(t, true)
	assert.Equal(t, []string{"csv", "html", "pdf", "text"}, withPDF.AvailableFormats())

	withoutPDF, _ := newReportServiceForTest(t, false)
	assert.Equal(t, []string{"csv", "html", "text"}, withoutPDF.AvailableFormats())
}

func TestStatisticsReportContents(t *testing.T) {
	svc, _ := newReportServiceForTest(t, true)

	artifact, err := svc.Generate(context.Background(), ReportRequest{
		Kind:   models.ReportKindStatistics,
		Format: models.ReportFormatText,
	})
	require.NoError(t, err)

	content, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "Total Students")
	assert.Contains(t, text, "Top Course 1")
	assert.Contains(t, text, "Grades A (90-100)")
}

func TestCleanupOldReports(t *testing.T) {
	svc, dir := newReportServiceForTest(t, true)
	ctx := context.Background()

	artifact, err := svc.Generate(ctx, ReportRequest{Kind: models.ReportKindCourses, Format: models.ReportFormatCSV})
	require.NoError(t, err)

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(artifact.Path, stale, stale))

	removed, err := svc.CleanupOldReports(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
