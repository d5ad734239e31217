package repository

import (
	"context"

	"eduregistry/internal/models"
	"eduregistry/internal/store"
	apperrors "eduregistry/pkg/errors"
)

// EnrollmentRepository manages persistence for enrollment records.
type EnrollmentRepository struct {
	db *store.Store
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *store.Store) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create inserts a new enrollment and returns the generated id. A
// double-enrollment surfaces as DuplicateKey naming the student/course
// pair; a dangling student or course id surfaces as IntegrityViolation.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) (int64, error) {
	if enrollment.StudentID == 0 || enrollment.CourseID == 0 {
		return 0, apperrors.Clone(apperrors.ErrValidation, "student id and course id are required")
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusEnrolled
	}

	var id int64
	err := r.db.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		id, err = tx.ExecInsert(ctx,
			`INSERT INTO enrollments (student_id, course_id, grade, status) VALUES (?, ?, ?, ?)`,
			enrollment.StudentID, enrollment.CourseID, enrollment.Grade, enrollment.Status)
		if err != nil {
			return err
		}
		enrollment.ID = id
		return appendAudit(ctx, tx, "enrollments", models.AuditOpCreate, id, nil, enrollment)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID fetches an enrollment by id, returning (nil, nil) when no row
// matches.
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.Get(ctx, &enrollment, `SELECT * FROM enrollments WHERE id = ?`, id)
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// GetAll returns every enrollment, newest enrollment date first.
func (r *EnrollmentRepository) GetAll(ctx context.Context) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := r.db.Select(ctx, &enrollments, `SELECT * FROM enrollments ORDER BY enrollment_date DESC`); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// Update overwrites all mutable fields of an existing enrollment. Returns
// false when the id does not exist.
func (r *EnrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) (bool, error) {
	updated := false
	err := r.db.WithTx(ctx, func(tx *store.Tx) error {
		var old models.Enrollment
		if err := tx.Get(ctx, &old, `SELECT * FROM enrollments WHERE id = ?`, enrollment.ID); err != nil {
			if apperrors.IsNotFound(err) {
				return nil
			}
			return err
		}
		affected, err := tx.Exec(ctx,
			`UPDATE enrollments SET student_id = ?, course_id = ?, grade = ?, status = ? WHERE id = ?`,
			enrollment.StudentID, enrollment.CourseID, enrollment.Grade, enrollment.Status, enrollment.ID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		updated = true
		return appendAudit(ctx, tx, "enrollments", models.AuditOpUpdate, enrollment.ID, &old, enrollment)
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

// Delete removes an enrollment. Returns false when the id does not exist.
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := r.db.WithTx(ctx, func(tx *store.Tx) error {
		var old models.Enrollment
		if err := tx.Get(ctx, &old, `SELECT * FROM enrollments WHERE id = ?`, id); err != nil {
			if apperrors.IsNotFound(err) {
				return nil
			}
			return err
		}
		affected, err := tx.Exec(ctx, `DELETE FROM enrollments WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		deleted = true
		return appendAudit(ctx, tx, "enrollments", models.AuditOpDelete, id, &old, nil)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// GetByStudent returns a student's enrollments, newest first.
func (r *EnrollmentRepository) GetByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.Select(ctx, &enrollments,
		`SELECT * FROM enrollments WHERE student_id = ? ORDER BY enrollment_date DESC`, studentID)
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

// GetByCourse returns a course's enrollments, newest first.
func (r *EnrollmentRepository) GetByCourse(ctx context.Context, courseID int64) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.Select(ctx, &enrollments,
		`SELECT * FROM enrollments WHERE course_id = ? ORDER BY enrollment_date DESC`, courseID)
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

// ListDetails returns every enrollment joined with its student and course
// columns, newest first.
func (r *EnrollmentRepository) ListDetails(ctx context.Context) ([]models.EnrollmentDetail, error) {
	var details []models.EnrollmentDetail
	err := r.db.Select(ctx, &details,
		`SELECT
			e.id AS enrollment_id,
			e.enrollment_date,
			e.grade,
			e.status,
			s.id AS student_id,
			s.first_name,
			s.last_name,
			s.email,
			c.id AS course_id,
			c.name AS course_name,
			c.code AS course_code,
			c.credits,
			c.instructor
		FROM enrollments e
		JOIN students s ON e.student_id = s.id
		JOIN courses c ON e.course_id = c.id
		ORDER BY e.enrollment_date DESC`)
	if err != nil {
		return nil, err
	}
	return details, nil
}

// BatchUpdateGrades applies every grade update inside one transaction and
// returns the count that matched an existing row. A miss is excluded from
// the count, not an error.
func (r *EnrollmentRepository) BatchUpdateGrades(ctx context.Context, updates []models.GradeUpdate) (int, error) {
	matched := 0
	err := r.db.WithTx(ctx, func(tx *store.Tx) error {
		for _, u := range updates {
			affected, err := tx.Exec(ctx,
				`UPDATE enrollments SET grade = ? WHERE id = ?`, u.Grade, u.EnrollmentID)
			if err != nil {
				return err
			}
			if affected > 0 {
				matched++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return matched, nil
}

// DeleteOrphans removes enrollments whose student or course no longer
// exists. Defensive: foreign keys should make this unreachable.
func (r *EnrollmentRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	return r.db.Exec(ctx,
		`DELETE FROM enrollments
		 WHERE student_id NOT IN (SELECT id FROM students)
		    OR course_id NOT IN (SELECT id FROM courses)`)
}
