package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduregistry/internal/models"
	"eduregistry/internal/store"
	apperrors "eduregistry/pkg/errors"
)

func TestStudentRepositoryRoundTrip(t *testing.T) {
	db := newTestStore(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, &models.Student{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "555-0100",
	})
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, models.StudentStatusActive, got.Status)
	assert.False(t, got.EnrollmentDate.IsZero())

	got.Phone = "555-0199"
	got.Status = models.StudentStatusGraduated
	updated, err := repo.Update(ctx, got)
	require.NoError(t, err)
	assert.True(t, updated)

	again, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "555-0199", again.Phone)
	assert.Equal(t, models.StudentStatusGraduated, again.Status)

	deleted, err := repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	gone, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestStudentRepositoryMissingIDs(t *testing.T) {
	db := newTestStore(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	got, err := repo.GetByID(ctx, 12345)
	require.NoError(t, err)
	assert.Nil(t, got)

	updated, err := repo.Update(ctx, &models.Student{
		ID: 12345, FirstName: "X", LastName: "Y", Email: "x@y.com", Status: models.StudentStatusActive,
	})
	require.NoError(t, err)
	assert.False(t, updated)

	deleted, err := repo.Delete(ctx, 12345)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestStudentRepositoryDuplicateEmail(t *testing.T) {
	db := newTestStore(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.Student{FirstName: "A", LastName: "B", Email: "same@example.com"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.Student{FirstName: "C", LastName: "D", Email: "same@example.com"})
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicateKey(err))
	assert.Equal(t, "email", apperrors.FieldOf(err))
}

func TestStudentRepositoryWritesAuditTrail(t *testing.T) {
	db := newTestStore(t)
	repo := NewStudentRepository(db)
	audits := NewAuditRepository(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, &models.Student{FirstName: "A", LastName: "B", Email: "audit@example.com"})
	require.NoError(t, err)

	student, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	student.LastName = "C"
	_, err = repo.Update(ctx, student)
	require.NoError(t, err)

	_, err = repo.Delete(ctx, id)
	require.NoError(t, err)

	trail, err := audits.ListByRecord(ctx, "students", id)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	assert.Equal(t, models.AuditOpCreate, trail[0].Operation)
	assert.Equal(t, models.AuditOpUpdate, trail[1].Operation)
	assert.Equal(t, models.AuditOpDelete, trail[2].Operation)
	assert.Nil(t, trail[0].OldValues)
	assert.NotEmpty(t, trail[0].NewValues)
	assert.NotEmpty(t, trail[2].OldValues)
	assert.Nil(t, trail[2].NewValues)
}

func TestStudentRepositorySearches(t *testing.T) {
	db := newTestStore(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	for _, s := range []models.Student{
		{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Phone: "100"},
		{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", Phone: "200", Status: models.StudentStatusGraduated},
		{FirstName: "Graciela", LastName: "Diaz", Email: "graciela@example.com", Phone: "300"},
	} {
		s := s
		_, err := repo.Create(ctx, &s)
		require.NoError(t, err)
	}

	byName, err := repo.SearchByName(ctx, "grac")
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	byEmail, err := repo.SearchByEmail(ctx, "alan@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "Alan", byEmail.FirstName)

	noEmail, err := repo.SearchByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, noEmail)

	graduated, err := repo.GetByStatus(ctx, models.StudentStatusGraduated)
	require.NoError(t, err)
	require.Len(t, graduated, 1)
	assert.Equal(t, "Turing", graduated[0].LastName)

	advanced, err := repo.SearchAdvanced(ctx, models.StudentSearch{
		Name:   "grac",
		Status: models.StudentStatusActive,
		Phone:  "30",
	})
	require.NoError(t, err)
	require.Len(t, advanced, 1)
	assert.Equal(t, "Diaz", advanced[0].LastName)
}

func TestMarkStaleInactive(t *testing.T) {
	db := newTestStore(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	// Seeded students 1-3 have current enrollments; 4 and 5 have none.
	require.NoError(t, db.Seed(ctx))

	changed, err := repo.MarkStaleInactive(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, changed)

	inactive, err := repo.GetByStatus(ctx, models.StudentStatusInactive)
	require.NoError(t, err)
	assert.Len(t, inactive, 2)
}

func TestStudentRepositoryPropagatesStoreErrors(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT * FROM students ORDER BY last_name, first_name`).
		WillReturnError(assert.AnError)

	repo := NewStudentRepository(store.NewWithDB(sqlx.NewDb(mockDB, "sqlite3"), nil))
	_, err = repo.GetAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStore)
	require.NoError(t, mock.ExpectationsWereMet())
}
