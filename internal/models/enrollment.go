package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
)

// Enrollment captures a student's registration in a course. The pair
// (StudentID, CourseID) is unique.
type Enrollment struct {
	ID             int64            `db:"id" json:"id"`
	StudentID      int64            `db:"student_id" json:"student_id"`
	CourseID       int64            `db:"course_id" json:"course_id"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollment_date"`
	Grade          *float64         `db:"grade" json:"grade,omitempty"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentPatch carries a sparse set of field assignments for a partial
// update. Nil fields are left untouched.
type EnrollmentPatch struct {
	StudentID  *int64
	CourseID   *int64
	Grade      *float64
	ClearGrade bool
	Status     *EnrollmentStatus
}

// Apply merges the patch into the enrollment, field by field. ClearGrade
// resets the grade to NULL and wins over Grade.
func (e *Enrollment) Apply(p EnrollmentPatch) {
	if p.StudentID != nil {
		e.StudentID = *p.StudentID
	}
	if p.CourseID != nil {
		e.CourseID = *p.CourseID
	}
	if p.ClearGrade {
		e.Grade = nil
	} else if p.Grade != nil {
		e.Grade = p.Grade
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
}

// EnrollmentDetail enriches Enrollment with student and course columns for
// joined listings.
type EnrollmentDetail struct {
	EnrollmentID   int64            `db:"enrollment_id" json:"enrollment_id"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollment_date"`
	Grade          *float64         `db:"grade" json:"grade,omitempty"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	StudentID      int64            `db:"student_id" json:"student_id"`
	FirstName      string           `db:"first_name" json:"first_name"`
	LastName       string           `db:"last_name" json:"last_name"`
	Email          string           `db:"email" json:"email"`
	CourseID       int64            `db:"course_id" json:"course_id"`
	CourseName     string           `db:"course_name" json:"course_name"`
	CourseCode     string           `db:"course_code" json:"course_code"`
	Credits        int              `db:"credits" json:"credits"`
	Instructor     string           `db:"instructor" json:"instructor,omitempty"`
}

// GradeUpdate pairs an enrollment id with its new grade for batch grading.
type GradeUpdate struct {
	EnrollmentID int64
	Grade        float64
}
