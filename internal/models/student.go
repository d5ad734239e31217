package models

import (
	"fmt"
	"time"
)

// StudentStatus represents the lifecycle of a student record.
type StudentStatus string

// Possible student statuses.
const (
	StudentStatusActive    StudentStatus = "active"
	StudentStatusInactive  StudentStatus = "inactive"
	StudentStatusGraduated StudentStatus = "graduated"
)

// Student represents a learner registered in the institution.
type Student struct {
	ID             int64         `db:"id" json:"id"`
	FirstName      string        `db:"first_name" json:"first_name"`
	LastName       string        `db:"last_name" json:"last_name"`
	Email          string        `db:"email" json:"email"`
	Phone          string        `db:"phone" json:"phone,omitempty"`
	BirthDate      *time.Time    `db:"birth_date" json:"birth_date,omitempty"`
	EnrollmentDate time.Time     `db:"enrollment_date" json:"enrollment_date"`
	Status         StudentStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// FullName returns the student's display name.
func (s Student) FullName() string {
	return fmt.Sprintf("%s %s", s.FirstName, s.LastName)
}

// StudentPatch carries a sparse set of field assignments for a partial
// update. Nil fields are left untouched.
type StudentPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	BirthDate *time.Time
	Status    *StudentStatus
}

// Apply merges the patch into the student, field by field.
func (s *Student) Apply(p StudentPatch) {
	if p.FirstName != nil {
		s.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		s.LastName = *p.LastName
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.BirthDate != nil {
		s.BirthDate = p.BirthDate
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
}

// StudentSearch encapsulates criteria for the advanced student search.
type StudentSearch struct {
	Name   string
	Email  string
	Phone  string
	Status StudentStatus
}

// StudentStats aggregates per-student enrollment figures.
type StudentStats struct {
	StudentID        int64   `db:"student_id" json:"student_id"`
	FirstName        string  `db:"first_name" json:"first_name"`
	LastName         string  `db:"last_name" json:"last_name"`
	TotalEnrollments int     `db:"total_enrollments" json:"total_enrollments"`
	CompletedCourses int     `db:"completed_courses" json:"completed_courses"`
	AverageGrade     float64 `db:"average_grade" json:"average_grade"`
	TotalCredits     int     `db:"total_credits" json:"total_credits"`
}
