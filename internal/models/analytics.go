package models

import "time"

// TranscriptEntry is one course line of a student's transcript.
type TranscriptEntry struct {
	CourseName     string           `db:"course_name" json:"course_name"`
	CourseCode     string           `db:"course_code" json:"course_code"`
	Credits        int              `db:"credits" json:"credits"`
	Instructor     string           `db:"instructor" json:"instructor,omitempty"`
	Grade          *float64         `db:"grade" json:"grade,omitempty"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollment_date"`
}

// Transcript is a student's joined academic history with the
// credit-weighted GPA over completed, graded courses.
type Transcript struct {
	Student      Student           `json:"student"`
	Courses      []TranscriptEntry `json:"courses"`
	GPA          float64           `json:"gpa"`
	TotalCredits int               `json:"total_credits"`
}

// RosterEntry is one student line of a course roster.
type RosterEntry struct {
	FirstName      string           `db:"first_name" json:"first_name"`
	LastName       string           `db:"last_name" json:"last_name"`
	Email          string           `db:"email" json:"email"`
	Grade          *float64         `db:"grade" json:"grade,omitempty"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollment_date"`
}

// Roster is the enrolled-student listing for one course.
type Roster struct {
	Course        Course        `json:"course"`
	Students      []RosterEntry `json:"students"`
	EnrolledCount int           `json:"enrolled_count"`
}

// CoursePopularity ranks a course by its enrollment count.
type CoursePopularity struct {
	CourseID    int64  `db:"course_id" json:"course_id"`
	Name        string `db:"name" json:"name"`
	Code        string `db:"code" json:"code"`
	Enrollments int    `db:"enrollments" json:"enrollments"`
}

// GradeBucket is one histogram bucket of the grade distribution.
type GradeBucket struct {
	Label string `db:"label" json:"label"`
	Count int    `db:"count" json:"count"`
}

// Statistics aggregates system-wide figures.
type Statistics struct {
	TotalStudents     int               `json:"total_students"`
	ActiveStudents    int               `json:"active_students"`
	GraduatedStudents int               `json:"graduated_students"`
	TotalCourses      int               `json:"total_courses"`
	TotalEnrollments  int               `json:"total_enrollments"`
	ActiveEnrollments int               `json:"active_enrollments"`
	CompletedCourses  int               `json:"completed_courses"`
	AverageGrade      float64           `json:"average_grade"`
	MostPopularCourse *CoursePopularity `json:"most_popular_course,omitempty"`
}

// StudentSummary aggregates per-student enrollment figures for the student
// report.
type StudentSummary struct {
	Student
	TotalCourses     int     `db:"total_courses" json:"total_courses"`
	CompletedCourses int     `db:"completed_courses" json:"completed_courses"`
	AverageGrade     float64 `db:"average_grade" json:"average_grade"`
}

// CourseSummary aggregates per-course enrollment figures for the course
// report.
type CourseSummary struct {
	Course
	Enrolled     int     `db:"enrolled" json:"enrolled"`
	Completed    int     `db:"completed" json:"completed"`
	AverageGrade float64 `db:"average_grade" json:"average_grade"`
}

// CleanupResult reports the effects of a maintenance pass.
type CleanupResult struct {
	OrphanedEnrollmentsRemoved int `json:"orphaned_enrollments_removed"`
	StudentsMarkedInactive     int `json:"students_marked_inactive"`
}
