package repository

import (
	"context"
	"math"

	"eduregistry/internal/models"
	"eduregistry/internal/store"
	apperrors "eduregistry/pkg/errors"
)

// StatsRepository serves the joined and aggregated read queries behind
// transcripts, rosters and system statistics.
type StatsRepository struct {
	db *store.Store
}

// NewStatsRepository constructs a StatsRepository.
func NewStatsRepository(db *store.Store) *StatsRepository {
	return &StatsRepository{db: db}
}

// TranscriptRows returns a student's enrollments joined with course
// columns, oldest enrollment first.
func (r *StatsRepository) TranscriptRows(ctx context.Context, studentID int64) ([]models.TranscriptEntry, error) {
	var rows []models.TranscriptEntry
	err := r.db.Select(ctx, &rows,
		`SELECT
			c.name AS course_name,
			c.code AS course_code,
			c.credits,
			c.instructor,
			e.grade,
			e.status,
			e.enrollment_date
		FROM enrollments e
		JOIN courses c ON e.course_id = c.id
		WHERE e.student_id = ?
		ORDER BY e.enrollment_date`, studentID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RosterRows returns the students enrolled in a course, ordered by last
// then first name.
func (r *StatsRepository) RosterRows(ctx context.Context, courseID int64) ([]models.RosterEntry, error) {
	var rows []models.RosterEntry
	err := r.db.Select(ctx, &rows,
		`SELECT
			s.first_name,
			s.last_name,
			s.email,
			e.grade,
			e.status,
			e.enrollment_date
		FROM enrollments e
		JOIN students s ON e.student_id = s.id
		WHERE e.course_id = ?
		ORDER BY s.last_name, s.first_name`, courseID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Statistics assembles the system-wide aggregate figures.
func (r *StatsRepository) Statistics(ctx context.Context) (*models.Statistics, error) {
	stats := &models.Statistics{}

	counts := []struct {
		dest  *int
		query string
	}{
		{&stats.TotalStudents, `SELECT COUNT(*) FROM students`},
		{&stats.ActiveStudents, `SELECT COUNT(*) FROM students WHERE status = 'active'`},
		{&stats.GraduatedStudents, `SELECT COUNT(*) FROM students WHERE status = 'graduated'`},
		{&stats.TotalCourses, `SELECT COUNT(*) FROM courses`},
		{&stats.TotalEnrollments, `SELECT COUNT(*) FROM enrollments`},
		{&stats.ActiveEnrollments, `SELECT COUNT(*) FROM enrollments WHERE status = 'enrolled'`},
		{&stats.CompletedCourses, `SELECT COUNT(*) FROM enrollments WHERE status = 'completed'`},
	}
	for _, c := range counts {
		n, err := r.db.ScalarInt(ctx, c.query)
		if err != nil {
			return nil, err
		}
		*c.dest = int(n)
	}

	avg, ok, err := r.db.ScalarFloat(ctx, `SELECT AVG(grade) FROM enrollments WHERE grade IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	if ok {
		stats.AverageGrade = round2(avg)
	}

	top, err := r.TopCourses(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(top) > 0 {
		stats.MostPopularCourse = &top[0]
	}
	return stats, nil
}

// TopCourses ranks courses by enrollment count, ties broken by lowest
// course id.
func (r *StatsRepository) TopCourses(ctx context.Context, limit int) ([]models.CoursePopularity, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []models.CoursePopularity
	err := r.db.Select(ctx, &rows,
		`SELECT c.id AS course_id, c.name, c.code, COUNT(e.id) AS enrollments
		 FROM courses c
		 LEFT JOIN enrollments e ON c.id = e.course_id
		 GROUP BY c.id, c.name, c.code
		 ORDER BY enrollments DESC, c.id
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GradeDistribution buckets graded enrollments into the letter-grade
// histogram (A 90-100, B 80-89, C 70-79, D 60-69, F below 60).
func (r *StatsRepository) GradeDistribution(ctx context.Context) ([]models.GradeBucket, error) {
	var rows []models.GradeBucket
	err := r.db.Select(ctx, &rows,
		`SELECT
			CASE
				WHEN grade >= 90 THEN 'A (90-100)'
				WHEN grade >= 80 THEN 'B (80-89)'
				WHEN grade >= 70 THEN 'C (70-79)'
				WHEN grade >= 60 THEN 'D (60-69)'
				ELSE 'F (0-59)'
			END AS label,
			COUNT(*) AS count
		FROM enrollments
		WHERE grade IS NOT NULL
		GROUP BY label
		ORDER BY label`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// StudentSummaries returns every student joined with their enrollment
// aggregates, optionally filtered by status, ordered by last then first
// name.
func (r *StatsRepository) StudentSummaries(ctx context.Context, status models.StudentStatus) ([]models.StudentSummary, error) {
	query := `SELECT
			s.*,
			COUNT(e.id) AS total_courses,
			COUNT(CASE WHEN e.status = 'completed' THEN 1 END) AS completed_courses,
			COALESCE(AVG(CASE WHEN e.grade IS NOT NULL THEN e.grade END), 0) AS average_grade
		FROM students s
		LEFT JOIN enrollments e ON s.id = e.student_id`
	var args []interface{}
	if status != "" {
		query += ` WHERE s.status = ?`
		args = append(args, status)
	}
	query += ` GROUP BY s.id ORDER BY s.last_name, s.first_name`

	var rows []models.StudentSummary
	if err := r.db.Select(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].AverageGrade = round2(rows[i].AverageGrade)
	}
	return rows, nil
}

// CourseSummaries returns every course joined with its enrollment
// aggregates, ordered by name.
func (r *StatsRepository) CourseSummaries(ctx context.Context) ([]models.CourseSummary, error) {
	var rows []models.CourseSummary
	err := r.db.Select(ctx, &rows,
		`SELECT
			c.*,
			COUNT(e.id) AS enrolled,
			COUNT(CASE WHEN e.status = 'completed' THEN 1 END) AS completed,
			COALESCE(AVG(CASE WHEN e.grade IS NOT NULL THEN e.grade END), 0) AS average_grade
		FROM courses c
		LEFT JOIN enrollments e ON c.id = e.course_id
		GROUP BY c.id
		ORDER BY c.name`)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].AverageGrade = round2(rows[i].AverageGrade)
	}
	return rows, nil
}

// StudentStats returns per-student enrollment figures, or (nil, nil) when
// the student does not exist.
func (r *StatsRepository) StudentStats(ctx context.Context, studentID int64) (*models.StudentStats, error) {
	var stats models.StudentStats
	err := r.db.Get(ctx, &stats,
		`SELECT
			s.id AS student_id,
			s.first_name,
			s.last_name,
			COUNT(e.id) AS total_enrollments,
			COUNT(CASE WHEN e.status = 'completed' THEN 1 END) AS completed_courses,
			COALESCE(AVG(CASE WHEN e.grade IS NOT NULL THEN e.grade END), 0) AS average_grade,
			COALESCE(SUM(CASE WHEN e.status = 'completed' THEN c.credits ELSE 0 END), 0) AS total_credits
		FROM students s
		LEFT JOIN enrollments e ON s.id = e.student_id
		LEFT JOIN courses c ON e.course_id = c.id
		WHERE s.id = ?
		GROUP BY s.id, s.first_name, s.last_name`, studentID)
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	stats.AverageGrade = round2(stats.AverageGrade)
	return &stats, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
