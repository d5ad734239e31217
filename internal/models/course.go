package models

import "time"

// Course represents a course offered in a semester.
type Course struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description,omitempty"`
	Credits     int       `db:"credits" json:"credits"`
	Semester    string    `db:"semester" json:"semester,omitempty"`
	Instructor  string    `db:"instructor" json:"instructor,omitempty"`
	Capacity    int       `db:"capacity" json:"capacity"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CoursePatch carries a sparse set of field assignments for a partial
// update. Nil fields are left untouched.
type CoursePatch struct {
	Name        *string
	Code        *string
	Description *string
	Credits     *int
	Semester    *string
	Instructor  *string
	Capacity    *int
}

// Apply merges the patch into the course, field by field.
func (c *Course) Apply(p CoursePatch) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Code != nil {
		c.Code = *p.Code
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Credits != nil {
		c.Credits = *p.Credits
	}
	if p.Semester != nil {
		c.Semester = *p.Semester
	}
	if p.Instructor != nil {
		c.Instructor = *p.Instructor
	}
	if p.Capacity != nil {
		c.Capacity = *p.Capacity
	}
}
