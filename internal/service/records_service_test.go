package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eduregistry/internal/models"
	"eduregistry/internal/repository"
	"eduregistry/internal/store"
	"eduregistry/pkg/config"
	apperrors "eduregistry/pkg/errors"
)

func newTestRegistry(t *testing.T) (*RecordsService, *store.Store) {
	t.Helper()
	db, err := store.Open(config.DatabaseConfig{Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewRecordsService(
		repository.NewStudentRepository(db),
		repository.NewCourseRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewStatsRepository(db),
		nil, nil)
	return svc, db
}

func ptr[T any](v T) *T {
	return &v
}

func TestAddStudentValidation(t *testing.T) {
	svc, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := svc.AddStudent(ctx, AddStudentRequest{FirstName: "A", LastName: "B", Email: "not-an-email"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.AddStudent(ctx, AddStudentRequest{LastName: "B", Email: "a@b.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	id, err := svc.AddStudent(ctx, AddStudentRequest{FirstName: "A", LastName: "B", Email: "a@b.com"})
	require.NoError(t, err)
	assert.Positive(t, id)
}

func TestEnrollStudentValidation(t *testing.T) {
	svc, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := svc.EnrollStudent(ctx, EnrollStudentRequest{StudentID: 1, CourseID: 1, Grade: ptr(120.0)})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.EnrollStudent(ctx, EnrollStudentRequest{StudentID: 1, CourseID: 1})
	require.Error(t, err)
	assert.True(t, apperrors.IsIntegrity(err))
}

func TestTranscriptWeightsGPAByCredits(t *testing.T) {
	svc, _ := newTestRegistry(t)
	ctx := context.Background()

	studentID, err := svc.AddStudent(ctx, AddStudentRequest{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)

	mathID, err := svc.AddCourse(ctx, AddCourseRequest{Name: "Mathematics", Code: "MAT101", Credits: 3})
	require.NoError(t, err)
	progID, err := svc.AddCourse(ctx, AddCourseRequest{Name: "Programming", Code: "PROG101", Credits: 4})
	require.NoError(t, err)
	engID, err := svc.AddCourse(ctx, AddCourseRequest{Name: "English", Code: "ENG101", Credits: 2})
	require.NoError(t, err)

	_, err = svc.EnrollStudent(ctx, EnrollStudentRequest{
		StudentID: studentID, CourseID: mathID, Grade: ptr(90.0), Status: models.EnrollmentStatusCompleted,
	})
	require.NoError(t, err)
	_, err = svc.EnrollStudent(ctx, EnrollStudentRequest{
		StudentID: studentID, CourseID: progID, Grade: ptr(80.0), Status: models.EnrollmentStatusCompleted,
	})
	require.NoError(t, err)
	// In progress, ungraded: listed but excluded from GPA and credits.
	_, err = svc.EnrollStudent(ctx, EnrollStudentRequest{StudentID: studentID, CourseID: engID})
	require.NoError(t, err)

	transcript, err := svc.GetStudentTranscript(ctx, studentID)
	require.NoError(t, err)
	require.NotNil(t, transcript)
	assert.Len(t, transcript.Courses, 3)
	assert.Equal(t, 7, transcript.TotalCredits)
	// (3*90 + 4*80) / (3+4) = 84.2857..., rounded to two decimals.
	assert.InDelta(t, 84.29, transcript.GPA, 0.001)
}

func TestTranscriptForMissingStudent(t *testing.T) {
	svc, _ := newTestRegistry(t)

	transcript, err := svc.GetStudentTranscript(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, transcript)
}

func TestUpdateStudentPartialPatch(t *testing.T) {
	svc, _ := newTestRegistry(t)
	ctx := context.Background()

	id, err := svc.AddStudent(ctx, AddStudentRequest{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Phone: "100"})
	require.NoError(t, err)

	updated, err := svc.UpdateStudent(ctx, id, models.StudentPatch{Phone: ptr("200")})
	require.NoError(t, err)
	assert.True(t, updated)

	got, err := svc.FindStudentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "200", got.Phone)
	assert.Equal(t, "Grace", got.FirstName)
	assert.Equal(t, "grace@example.com", got.Email)

	updated, err = svc.UpdateStudent(ctx, 9999, models.StudentPatch{Phone: ptr("300")})
	require.NoError(t, err)
	assert.False(t, updated)

	_, err = svc.UpdateStudent(ctx, id, models.StudentPatch{Email: ptr("")})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdateEnrollmentClearGrade(t *testing.T) {
	svc, db := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, db.Seed(ctx))

	updated, err := svc.UpdateEnrollment(ctx, 1, models.EnrollmentPatch{ClearGrade: true})
	require.NoError(t, err)
	assert.True(t, updated)

	enrollments, err := svc.FindEnrollmentsByStudent(ctx, 1)
	require.NoError(t, err)
	for _, e := range enrollments {
		if e.ID == 1 {
			assert.Nil(t, e.Grade)
		}
	}

	_, err = svc.UpdateEnrollment(ctx, 2, models.EnrollmentPatch{Grade: ptr(130.0)})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCourseRosterCountsAgainstCapacity(t *testing.T) {
	svc, db := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, db.Seed(ctx))

	roster, err := svc.GetCourseRoster(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, roster)
	assert.Equal(t, "PROG101", roster.Course.Code)
	assert.Equal(t, 2, roster.EnrolledCount)
	assert.Len(t, roster.Students, 2)

	missing, err := svc.GetCourseRoster(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBatchUpdateGradesValidatesRange(t *testing.T) {
	svc, db := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, db.Seed(ctx))

	_, err := svc.BatchUpdateGrades(ctx, []models.GradeUpdate{{EnrollmentID: 1, Grade: -5}})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	matched, err := svc.BatchUpdateGrades(ctx, []models.GradeUpdate{
		{EnrollmentID: 1, Grade: 60},
		{EnrollmentID: 9999, Grade: 70},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, matched)
}

func TestCleanupData(t *testing.T) {
	svc, db := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, db.Seed(ctx))

	result, err := svc.CleanupData(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.OrphanedEnrollmentsRemoved)
	// Seeded students 4 and 5 have no enrollments.
	assert.Equal(t, 2, result.StudentsMarkedInactive)
}

func TestDeleteStudentCascades(t *testing.T) {
	svc, db := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, db.Seed(ctx))

	deleted, err := svc.DeleteStudent(ctx, 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	enrollments, err := svc.FindEnrollmentsByStudent(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, enrollments)

	stats, err := svc.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalStudents)
	assert.Equal(t, 3, stats.TotalEnrollments)
}

func TestStudentLifecycleScenario(t *testing.T) {
	svc, _ := newTestRegistry(t)
	ctx := context.Background()

	studentID, err := svc.AddStudent(ctx, AddStudentRequest{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"})
	require.NoError(t, err)
	courseID, err := svc.AddCourse(ctx, AddCourseRequest{Name: "Computability", Code: "COMP400", Credits: 4})
	require.NoError(t, err)

	enrollmentID, err := svc.EnrollStudent(ctx, EnrollStudentRequest{StudentID: studentID, CourseID: courseID})
	require.NoError(t, err)

	updated, err := svc.UpdateEnrollment(ctx, enrollmentID, models.EnrollmentPatch{
		Grade:  ptr(95.0),
		Status: ptr(models.EnrollmentStatusCompleted),
	})
	require.NoError(t, err)
	assert.True(t, updated)

	transcript, err := svc.GetStudentTranscript(ctx, studentID)
	require.NoError(t, err)
	assert.InDelta(t, 95.0, transcript.GPA, 0.001)
	assert.Equal(t, 4, transcript.TotalCredits)

	found, err := svc.FindStudentByEmail(ctx, "alan@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, studentID, found.ID)

	deleted, err := svc.DeleteEnrollment(ctx, enrollmentID)
	require.NoError(t, err)
	assert.True(t, deleted)
}
