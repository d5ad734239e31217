package repository

import (
	"context"
	"strings"

	"eduregistry/internal/models"
	"eduregistry/internal/store"
	apperrors "eduregistry/pkg/errors"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *store.Store
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *store.Store) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a new student and returns the generated id. A duplicate
// email surfaces as a DuplicateKey error naming the field.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) (int64, error) {
	if student.FirstName == "" || student.LastName == "" || student.Email == "" {
		return 0, apperrors.Clone(apperrors.ErrValidation, "first name, last name and email are required")
	}
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}

	var id int64
	err := r.db.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		id, err = tx.ExecInsert(ctx,
			`INSERT INTO students (first_name, last_name, email, phone, birth_date, status) VALUES (?, ?, ?, ?, ?, ?)`,
			student.FirstName, student.LastName, student.Email, student.Phone, student.BirthDate, student.Status)
		if err != nil {
			return err
		}
		student.ID = id
		return appendAudit(ctx, tx, "students", models.AuditOpCreate, id, nil, student)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID fetches a student by id, returning (nil, nil) when no row
// matches.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	var student models.Student
	err := r.db.Get(ctx, &student, `SELECT * FROM students WHERE id = ?`, id)
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// GetAll returns every student ordered by last then first name.
func (r *StudentRepository) GetAll(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.Select(ctx, &students, `SELECT * FROM students ORDER BY last_name, first_name`); err != nil {
		return nil, err
	}
	return students, nil
}

// Update overwrites all mutable fields of an existing student. Returns
// false when the id does not exist.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) (bool, error) {
	updated := false
	err := r.db.WithTx(ctx, func(tx *store.Tx) error {
		var old models.Student
		if err := tx.Get(ctx, &old, `SELECT * FROM students WHERE id = ?`, student.ID); err != nil {
			if apperrors.IsNotFound(err) {
				return nil
			}
			return err
		}
		affected, err := tx.Exec(ctx,
			`UPDATE students SET first_name = ?, last_name = ?, email = ?, phone = ?, birth_date = ?, status = ? WHERE id = ?`,
			student.FirstName, student.LastName, student.Email, student.Phone, student.BirthDate, student.Status, student.ID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		updated = true
		return appendAudit(ctx, tx, "students", models.AuditOpUpdate, student.ID, &old, student)
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

// Delete removes a student, cascading to their enrollments. Returns false
// when the id does not exist.
func (r *StudentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := r.db.WithTx(ctx, func(tx *store.Tx) error {
		var old models.Student
		if err := tx.Get(ctx, &old, `SELECT * FROM students WHERE id = ?`, id); err != nil {
			if apperrors.IsNotFound(err) {
				return nil
			}
			return err
		}
		affected, err := tx.Exec(ctx, `DELETE FROM students WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		deleted = true
		return appendAudit(ctx, tx, "students", models.AuditOpDelete, id, &old, nil)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// SearchByName finds students whose first or last name contains the term,
// case-insensitively.
func (r *StudentRepository) SearchByName(ctx context.Context, name string) ([]models.Student, error) {
	pattern := "%" + name + "%"
	var students []models.Student
	err := r.db.Select(ctx, &students,
		`SELECT * FROM students WHERE first_name LIKE ? OR last_name LIKE ? ORDER BY last_name, first_name`,
		pattern, pattern)
	if err != nil {
		return nil, err
	}
	return students, nil
}

// SearchByEmail performs an exact email lookup, returning (nil, nil) when
// no student matches.
func (r *StudentRepository) SearchByEmail(ctx context.Context, email string) (*models.Student, error) {
	var student models.Student
	err := r.db.Get(ctx, &student, `SELECT * FROM students WHERE email = ?`, email)
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// GetByStatus filters students by lifecycle status.
func (r *StudentRepository) GetByStatus(ctx context.Context, status models.StudentStatus) ([]models.Student, error) {
	var students []models.Student
	err := r.db.Select(ctx, &students,
		`SELECT * FROM students WHERE status = ? ORDER BY last_name, first_name`, status)
	if err != nil {
		return nil, err
	}
	return students, nil
}

// SearchAdvanced combines multiple optional criteria.
func (r *StudentRepository) SearchAdvanced(ctx context.Context, criteria models.StudentSearch) ([]models.Student, error) {
	conditions := []string{"1=1"}
	var args []interface{}

	if criteria.Name != "" {
		conditions = append(conditions, "(first_name LIKE ? OR last_name LIKE ?)")
		pattern := "%" + criteria.Name + "%"
		args = append(args, pattern, pattern)
	}
	if criteria.Email != "" {
		conditions = append(conditions, "email LIKE ?")
		args = append(args, "%"+criteria.Email+"%")
	}
	if criteria.Phone != "" {
		conditions = append(conditions, "phone LIKE ?")
		args = append(args, "%"+criteria.Phone+"%")
	}
	if criteria.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, criteria.Status)
	}

	query := "SELECT * FROM students WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY last_name, first_name"
	var students []models.Student
	if err := r.db.Select(ctx, &students, query, args...); err != nil {
		return nil, err
	}
	return students, nil
}

// MarkStaleInactive flags active students with no enrollment inside the
// last 365 days as inactive, returning the number of rows changed.
func (r *StudentRepository) MarkStaleInactive(ctx context.Context) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE students SET status = 'inactive'
		 WHERE id NOT IN (
			SELECT DISTINCT student_id FROM enrollments
			WHERE enrollment_date >= date('now', '-1 year')
		 )
		 AND status = 'active'`)
}
