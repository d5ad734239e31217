package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"eduregistry/internal/models"
	apperrors "eduregistry/pkg/errors"
)

type studentRepo interface {
	Create(ctx context.Context, student *models.Student) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetAll(ctx context.Context) ([]models.Student, error)
	Update(ctx context.Context, student *models.Student) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	SearchByName(ctx context.Context, name string) ([]models.Student, error)
	SearchByEmail(ctx context.Context, email string) (*models.Student, error)
	GetByStatus(ctx context.Context, status models.StudentStatus) ([]models.Student, error)
	SearchAdvanced(ctx context.Context, criteria models.StudentSearch) ([]models.Student, error)
	MarkStaleInactive(ctx context.Context) (int64, error)
}

type courseRepo interface {
	Create(ctx context.Context, course *models.Course) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	GetAll(ctx context.Context) ([]models.Course, error)
	Update(ctx context.Context, course *models.Course) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	SearchByCode(ctx context.Context, code string) (*models.Course, error)
	SearchByName(ctx context.Context, name string) ([]models.Course, error)
	GetBySemester(ctx context.Context, semester string) ([]models.Course, error)
}

type enrollmentRepo interface {
	Create(ctx context.Context, enrollment *models.Enrollment) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Enrollment, error)
	GetAll(ctx context.Context) ([]models.Enrollment, error)
	Update(ctx context.Context, enrollment *models.Enrollment) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	GetByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error)
	GetByCourse(ctx context.Context, courseID int64) ([]models.Enrollment, error)
	ListDetails(ctx context.Context) ([]models.EnrollmentDetail, error)
	BatchUpdateGrades(ctx context.Context, updates []models.GradeUpdate) (int, error)
	DeleteOrphans(ctx context.Context) (int64, error)
}

type statsRepo interface {
	TranscriptRows(ctx context.Context, studentID int64) ([]models.TranscriptEntry, error)
	RosterRows(ctx context.Context, courseID int64) ([]models.RosterEntry, error)
	Statistics(ctx context.Context) (*models.Statistics, error)
	TopCourses(ctx context.Context, limit int) ([]models.CoursePopularity, error)
	GradeDistribution(ctx context.Context) ([]models.GradeBucket, error)
	StudentStats(ctx context.Context, studentID int64) (*models.StudentStats, error)
}

// AddStudentRequest is the payload for registering a student.
type AddStudentRequest struct {
	FirstName string               `json:"first_name" validate:"required"`
	LastName  string               `json:"last_name" validate:"required"`
	Email     string               `json:"email" validate:"required,email"`
	Phone     string               `json:"phone"`
	BirthDate *time.Time           `json:"birth_date"`
	Status    models.StudentStatus `json:"status" validate:"omitempty,oneof=active inactive graduated"`
}

// AddCourseRequest is the payload for registering a course.
type AddCourseRequest struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code" validate:"required"`
	Description string `json:"description"`
	Credits     int    `json:"credits" validate:"gte=0"`
	Semester    string `json:"semester"`
	Instructor  string `json:"instructor"`
	Capacity    int    `json:"capacity" validate:"gte=0"`
}

// EnrollStudentRequest is the payload for enrolling a student in a course.
type EnrollStudentRequest struct {
	StudentID int64                   `json:"student_id" validate:"required,gt=0"`
	CourseID  int64                   `json:"course_id" validate:"required,gt=0"`
	Grade     *float64                `json:"grade" validate:"omitempty,gte=0,lte=100"`
	Status    models.EnrollmentStatus `json:"status" validate:"omitempty,oneof=enrolled completed dropped"`
}

// RecordsService is the stateless façade over the three repositories. It
// validates inputs, composes derived reads and owns no state of its own.
type RecordsService struct {
	students    studentRepo
	courses     courseRepo
	enrollments enrollmentRepo
	stats       statsRepo
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewRecordsService constructs a RecordsService.
func NewRecordsService(students studentRepo, courses courseRepo, enrollments enrollmentRepo, stats statsRepo, validate *validator.Validate, logger *zap.Logger) *RecordsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsService{
		students:    students,
		courses:     courses,
		enrollments: enrollments,
		stats:       stats,
		validator:   validate,
		logger:      logger,
	}
}

// AddStudent registers a new student and returns the generated id.
func (s *RecordsService) AddStudent(ctx context.Context, req AddStudentRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrValidation.Code, "invalid student payload")
	}
	student := &models.Student{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		BirthDate: req.BirthDate,
		Status:    req.Status,
	}
	id, err := s.students.Create(ctx, student)
	if err != nil {
		return 0, err
	}
	s.logger.Info("student created", zap.Int64("id", id), zap.String("email", req.Email))
	return id, nil
}

// AddCourse registers a new course and returns the generated id.
func (s *RecordsService) AddCourse(ctx context.Context, req AddCourseRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrValidation.Code, "invalid course payload")
	}
	course := &models.Course{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Credits:     req.Credits,
		Semester:    req.Semester,
		Instructor:  req.Instructor,
		Capacity:    req.Capacity,
	}
	id, err := s.courses.Create(ctx, course)
	if err != nil {
		return 0, err
	}
	s.logger.Info("course created", zap.Int64("id", id), zap.String("code", req.Code))
	return id, nil
}

// EnrollStudent registers a student in a course and returns the generated
// enrollment id.
func (s *RecordsService) EnrollStudent(ctx context.Context, req EnrollStudentRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrValidation.Code, "invalid enrollment payload")
	}
	enrollment := &models.Enrollment{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Grade:     req.Grade,
		Status:    req.Status,
	}
	id, err := s.enrollments.Create(ctx, enrollment)
	if err != nil {
		return 0, err
	}
	s.logger.Info("enrollment created",
		zap.Int64("id", id),
		zap.Int64("student_id", req.StudentID),
		zap.Int64("course_id", req.CourseID))
	return id, nil
}

// UpdateStudent applies a sparse patch to an existing student via
// copy-modify-write. Returns false when the id does not exist.
func (s *RecordsService) UpdateStudent(ctx context.Context, id int64, patch models.StudentPatch) (bool, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if student == nil {
		return false, nil
	}
	student.Apply(patch)
	if student.FirstName == "" || student.LastName == "" || student.Email == "" {
		return false, apperrors.Clone(apperrors.ErrValidation, "first name, last name and email must not be empty")
	}
	if !validStudentStatus(student.Status) {
		return false, apperrors.Clone(apperrors.ErrValidation, fmt.Sprintf("invalid student status %q", student.Status))
	}
	return s.students.Update(ctx, student)
}

// UpdateCourse applies a sparse patch to an existing course. Returns false
// when the id does not exist.
func (s *RecordsService) UpdateCourse(ctx context.Context, id int64, patch models.CoursePatch) (bool, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if course == nil {
		return false, nil
	}
	course.Apply(patch)
	if course.Name == "" || course.Code == "" {
		return false, apperrors.Clone(apperrors.ErrValidation, "name and code must not be empty")
	}
	if course.Credits < 0 {
		return false, apperrors.Clone(apperrors.ErrValidation, "credits must not be negative")
	}
	return s.courses.Update(ctx, course)
}

// UpdateEnrollment applies a sparse patch to an existing enrollment.
// Returns false when the id does not exist.
func (s *RecordsService) UpdateEnrollment(ctx context.Context, id int64, patch models.EnrollmentPatch) (bool, error) {
	enrollment, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if enrollment == nil {
		return false, nil
	}
	enrollment.Apply(patch)
	if enrollment.Grade != nil && (*enrollment.Grade < 0 || *enrollment.Grade > 100) {
		return false, apperrors.Clone(apperrors.ErrValidation, "grade must be between 0 and 100")
	}
	if !validEnrollmentStatus(enrollment.Status) {
		return false, apperrors.Clone(apperrors.ErrValidation, fmt.Sprintf("invalid enrollment status %q", enrollment.Status))
	}
	return s.enrollments.Update(ctx, enrollment)
}

// DeleteStudent removes a student and, by cascade, their enrollments.
func (s *RecordsService) DeleteStudent(ctx context.Context, id int64) (bool, error) {
	return s.students.Delete(ctx, id)
}

// DeleteCourse removes a course and, by cascade, its enrollments.
func (s *RecordsService) DeleteCourse(ctx context.Context, id int64) (bool, error) {
	return s.courses.Delete(ctx, id)
}

// DeleteEnrollment removes a single enrollment.
func (s *RecordsService) DeleteEnrollment(ctx context.Context, id int64) (bool, error) {
	return s.enrollments.Delete(ctx, id)
}

// FindStudentByID returns (nil, nil) when no student matches.
func (s *RecordsService) FindStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	return s.students.GetByID(ctx, id)
}

// FindStudentsByName searches by partial, case-insensitive name.
func (s *RecordsService) FindStudentsByName(ctx context.Context, name string) ([]models.Student, error) {
	return s.students.SearchByName(ctx, name)
}

// FindStudentByEmail returns (nil, nil) when no student matches.
func (s *RecordsService) FindStudentByEmail(ctx context.Context, email string) (*models.Student, error) {
	return s.students.SearchByEmail(ctx, email)
}

// FindCourseByCode returns (nil, nil) when no course matches.
func (s *RecordsService) FindCourseByCode(ctx context.Context, code string) (*models.Course, error) {
	return s.courses.SearchByCode(ctx, code)
}

// FindCoursesByName searches by partial, case-insensitive name.
func (s *RecordsService) FindCoursesByName(ctx context.Context, name string) ([]models.Course, error) {
	return s.courses.SearchByName(ctx, name)
}

// FindEnrollmentsByStudent lists a student's enrollments, newest first.
func (s *RecordsService) FindEnrollmentsByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	return s.enrollments.GetByStudent(ctx, studentID)
}

// FindEnrollmentsByCourse lists a course's enrollments, newest first.
func (s *RecordsService) FindEnrollmentsByCourse(ctx context.Context, courseID int64) ([]models.Enrollment, error) {
	return s.enrollments.GetByCourse(ctx, courseID)
}

// SearchStudents combines multiple optional criteria.
func (s *RecordsService) SearchStudents(ctx context.Context, criteria models.StudentSearch) ([]models.Student, error) {
	return s.students.SearchAdvanced(ctx, criteria)
}

// ListEnrollmentDetails returns every enrollment joined with student and
// course columns.
func (s *RecordsService) ListEnrollmentDetails(ctx context.Context) ([]models.EnrollmentDetail, error) {
	return s.enrollments.ListDetails(ctx)
}

// GetStudentTranscript assembles a student's academic history with the
// credit-weighted GPA over completed, graded courses. Returns (nil, nil)
// when the student does not exist.
func (s *RecordsService) GetStudentTranscript(ctx context.Context, studentID int64) (*models.Transcript, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, nil
	}
	rows, err := s.stats.TranscriptRows(ctx, studentID)
	if err != nil {
		return nil, err
	}

	totalCredits := 0
	gradePoints := 0.0
	for _, row := range rows {
		if row.Grade != nil && row.Status == models.EnrollmentStatusCompleted {
			totalCredits += row.Credits
			gradePoints += *row.Grade * float64(row.Credits)
		}
	}
	gpa := 0.0
	if totalCredits > 0 {
		gpa = round2(gradePoints / float64(totalCredits))
	}
	return &models.Transcript{
		Student:      *student,
		Courses:      rows,
		GPA:          gpa,
		TotalCredits: totalCredits,
	}, nil
}

// GetCourseRoster assembles the enrolled-student listing for a course with
// its enrolled count against capacity. Returns (nil, nil) when the course
// does not exist.
func (s *RecordsService) GetCourseRoster(ctx context.Context, courseID int64) (*models.Roster, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, nil
	}
	rows, err := s.stats.RosterRows(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return &models.Roster{
		Course:        *course,
		Students:      rows,
		EnrolledCount: len(rows),
	}, nil
}

// GetStatistics returns the system-wide aggregate figures.
func (s *RecordsService) GetStatistics(ctx context.Context) (*models.Statistics, error) {
	return s.stats.Statistics(ctx)
}

// GetStudentStatistics returns per-student figures, (nil, nil) when the
// student does not exist.
func (s *RecordsService) GetStudentStatistics(ctx context.Context, studentID int64) (*models.StudentStats, error) {
	return s.stats.StudentStats(ctx, studentID)
}

// BatchUpdateGrades applies every update in one transaction and returns
// how many matched an existing enrollment. Missing ids are skipped, not
// failed.
func (s *RecordsService) BatchUpdateGrades(ctx context.Context, updates []models.GradeUpdate) (int, error) {
	for _, u := range updates {
		if u.Grade < 0 || u.Grade > 100 {
			return 0, apperrors.Clone(apperrors.ErrValidation,
				fmt.Sprintf("grade %.2f for enrollment %d out of range [0, 100]", u.Grade, u.EnrollmentID))
		}
	}
	matched, err := s.enrollments.BatchUpdateGrades(ctx, updates)
	if err != nil {
		return 0, err
	}
	s.logger.Info("batch grade update applied",
		zap.Int("requested", len(updates)),
		zap.Int("matched", matched))
	return matched, nil
}

// CleanupData runs the two idempotent maintenance passes: orphaned
// enrollment removal and stale-student inactivation.
func (s *RecordsService) CleanupData(ctx context.Context) (*models.CleanupResult, error) {
	orphans, err := s.enrollments.DeleteOrphans(ctx)
	if err != nil {
		return nil, err
	}
	stale, err := s.students.MarkStaleInactive(ctx)
	if err != nil {
		return nil, err
	}
	result := &models.CleanupResult{
		OrphanedEnrollmentsRemoved: int(orphans),
		StudentsMarkedInactive:     int(stale),
	}
	s.logger.Info("cleanup completed",
		zap.Int("orphaned_enrollments_removed", result.OrphanedEnrollmentsRemoved),
		zap.Int("students_marked_inactive", result.StudentsMarkedInactive))
	return result, nil
}

func validStudentStatus(status models.StudentStatus) bool {
	switch status {
	case models.StudentStatusActive, models.StudentStatusInactive, models.StudentStatusGraduated:
		return true
	}
	return false
}

func validEnrollmentStatus(status models.EnrollmentStatus) bool {
	switch status {
	case models.EnrollmentStatusEnrolled, models.EnrollmentStatusCompleted, models.EnrollmentStatusDropped:
		return true
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
