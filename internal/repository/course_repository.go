package repository

import (
	"context"

	"eduregistry/internal/models"
	"eduregistry/internal/store"
	apperrors "eduregistry/pkg/errors"
)

// CourseRepository manages persistence for course records.
type CourseRepository struct {
	db *store.Store
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *store.Store) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create inserts a new course and returns the generated id. A duplicate
// code surfaces as a DuplicateKey error naming the field.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) (int64, error) {
	if course.Name == "" || course.Code == "" {
		return 0, apperrors.Clone(apperrors.ErrValidation, "name and code are required")
	}
	if course.Credits == 0 {
		course.Credits = 3
	}
	if course.Capacity == 0 {
		course.Capacity = 30
	}

	var id int64
	err := r.db.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		id, err = tx.ExecInsert(ctx,
			`INSERT INTO courses (name, code, description, credits, semester, instructor, capacity) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			course.Name, course.Code, course.Description, course.Credits, course.Semester, course.Instructor, course.Capacity)
		if err != nil {
			return err
		}
		course.ID = id
		return appendAudit(ctx, tx, "courses", models.AuditOpCreate, id, nil, course)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID fetches a course by id, returning (nil, nil) when no row
// matches.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	var course models.Course
	err := r.db.Get(ctx, &course, `SELECT * FROM courses WHERE id = ?`, id)
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// GetAll returns every course ordered by name.
func (r *CourseRepository) GetAll(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.Select(ctx, &courses, `SELECT * FROM courses ORDER BY name`); err != nil {
		return nil, err
	}
	return courses, nil
}

// Update overwrites all mutable fields of an existing course. Returns
// false when the id does not exist.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) (bool, error) {
	updated := false
	err := r.db.WithTx(ctx, func(tx *store.Tx) error {
		var old models.Course
		if err := tx.Get(ctx, &old, `SELECT * FROM courses WHERE id = ?`, course.ID); err != nil {
			if apperrors.IsNotFound(err) {
				return nil
			}
			return err
		}
		affected, err := tx.Exec(ctx,
			`UPDATE courses SET name = ?, code = ?, description = ?, credits = ?, semester = ?, instructor = ?, capacity = ? WHERE id = ?`,
			course.Name, course.Code, course.Description, course.Credits, course.Semester, course.Instructor, course.Capacity, course.ID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		updated = true
		return appendAudit(ctx, tx, "courses", models.AuditOpUpdate, course.ID, &old, course)
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

// Delete removes a course, cascading to its enrollments. Returns false
// when the id does not exist.
func (r *CourseRepository) Delete(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := r.db.WithTx(ctx, func(tx *store.Tx) error {
		var old models.Course
		if err := tx.Get(ctx, &old, `SELECT * FROM courses WHERE id = ?`, id); err != nil {
			if apperrors.IsNotFound(err) {
				return nil
			}
			return err
		}
		affected, err := tx.Exec(ctx, `DELETE FROM courses WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		deleted = true
		return appendAudit(ctx, tx, "courses", models.AuditOpDelete, id, &old, nil)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// SearchByCode performs an exact code lookup, returning (nil, nil) when no
// course matches.
func (r *CourseRepository) SearchByCode(ctx context.Context, code string) (*models.Course, error) {
	var course models.Course
	err := r.db.Get(ctx, &course, `SELECT * FROM courses WHERE code = ?`, code)
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// SearchByName finds courses whose name contains the term,
// case-insensitively.
func (r *CourseRepository) SearchByName(ctx context.Context, name string) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.Select(ctx, &courses,
		`SELECT * FROM courses WHERE name LIKE ? ORDER BY name`, "%"+name+"%")
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// GetBySemester filters courses by semester.
func (r *CourseRepository) GetBySemester(ctx context.Context, semester string) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.Select(ctx, &courses,
		`SELECT * FROM courses WHERE semester = ? ORDER BY name`, semester)
	if err != nil {
		return nil, err
	}
	return courses, nil
}
