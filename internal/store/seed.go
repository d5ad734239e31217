package store

import (
	"context"

	"go.uber.org/zap"
)

type seedStudent struct {
	firstName, lastName, email, phone, birthDate string
}

type seedCourse struct {
	name, code, description string
	credits                 int
	semester, instructor    string
}

type seedEnrollment struct {
	studentID, courseID int64
	grade               float64
}

var seedStudents = []seedStudent{
	{"Juan", "Perez", "juan.perez@email.com", "123-456-7890", "1995-03-15"},
	{"Maria", "Garcia", "maria.garcia@email.com", "123-456-7891", "1996-07-20"},
	{"Carlos", "Lopez", "carlos.lopez@email.com", "123-456-7892", "1994-11-10"},
	{"Ana", "Martinez", "ana.martinez@email.com", "123-456-7893", "1997-02-28"},
	{"Luis", "Rodriguez", "luis.rodriguez@email.com", "123-456-7894", "1995-09-05"},
}

var seedCourses = []seedCourse{
	{"Programming I", "PROG101", "Introduction to programming", 4, "2024-1", "Prof. Smith"},
	{"Databases", "BD201", "Database fundamentals", 3, "2024-1", "Prof. Johnson"},
	{"Mathematics", "MAT101", "Basic mathematics", 3, "2024-1", "Prof. Brown"},
	{"English", "ENG101", "Basic english", 2, "2024-1", "Prof. Davis"},
	{"Algorithms", "ALG201", "Algorithms and data structures", 4, "2024-2", "Prof. Wilson"},
}

var seedEnrollments = []seedEnrollment{
	{1, 1, 85.5},
	{1, 2, 90.0},
	{2, 1, 78.0},
	{2, 3, 92.5},
	{3, 2, 88.0},
}

// Seed inserts the example rows if the students table is empty. Safe to
// call repeatedly; only the first call on an empty database has effect.
func (s *Store) Seed(ctx context.Context) error {
	count, err := s.ScalarInt(ctx, "SELECT COUNT(*) FROM students")
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	err = s.WithTx(ctx, func(tx *Tx) error {
		for _, st := range seedStudents {
			if _, err := tx.ExecInsert(ctx,
				`INSERT INTO students (first_name, last_name, email, phone, birth_date) VALUES (?, ?, ?, ?, ?)`,
				st.firstName, st.lastName, st.email, st.phone, st.birthDate); err != nil {
				return err
			}
		}
		for _, c := range seedCourses {
			if _, err := tx.ExecInsert(ctx,
				`INSERT INTO courses (name, code, description, credits, semester, instructor) VALUES (?, ?, ?, ?, ?, ?)`,
				c.name, c.code, c.description, c.credits, c.semester, c.instructor); err != nil {
				return err
			}
		}
		for _, e := range seedEnrollments {
			if _, err := tx.ExecInsert(ctx,
				`INSERT INTO enrollments (student_id, course_id, grade, status) VALUES (?, ?, ?, 'completed')`,
				e.studentID, e.courseID, e.grade); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("sample data seeded",
		zap.Int("students", len(seedStudents)),
		zap.Int("courses", len(seedCourses)),
		zap.Int("enrollments", len(seedEnrollments)))
	return nil
}
