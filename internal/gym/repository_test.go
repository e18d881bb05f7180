package gym

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, mock, func() { db.Close() }
}

func gymRows(g Gym) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "owner_email", "name", "location",
		"max_users", "current_users", "is_active", "created_at",
	}).AddRow(
		g.ID, g.OwnerEmail, g.Name, g.Location,
		g.MaxUsers, g.CurrentUsers, g.IsActive, g.CreatedAt,
	)
}

func TestRepository_Create(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO gyms (owner_email, name, location, max_users)`)).
		WithArgs("owner@example.com", "Iron Temple", "Madrid", 30).
		WillReturnRows(gymRows(Gym{
			ID: 1, OwnerEmail: "owner@example.com", Name: "Iron Temple", Location: "Madrid",
			MaxUsers: 30, CurrentUsers: 0, IsActive: true, CreatedAt: time.Now(),
		}))

	g, err := repo.Create(context.Background(), "owner@example.com", "Iron Temple", "Madrid", 30)

	assert.NoError(t, err)
	assert.Equal(t, 30, g.MaxUsers)
	assert.Equal(t, 0, g.CurrentUsers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_DefaultCapacity(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO gyms (owner_email, name, location, max_users)`)).
		WithArgs("owner@example.com", "Iron Temple", "Madrid", DefaultMaxUsers).
		WillReturnRows(gymRows(Gym{
			ID: 1, OwnerEmail: "owner@example.com", Name: "Iron Temple", Location: "Madrid",
			MaxUsers: DefaultMaxUsers, IsActive: true, CreatedAt: time.Now(),
		}))

	g, err := repo.Create(context.Background(), "owner@example.com", "Iron Temple", "Madrid", 0)

	assert.NoError(t, err)
	assert.Equal(t, DefaultMaxUsers, g.MaxUsers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM gyms`)).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	g, err := repo.GetByID(context.Background(), 99)

	assert.ErrorIs(t, err, ErrGymNotFound)
	assert.Nil(t, g)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_IncreaseCapacity(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND current_users <= $2`)).
		WithArgs(1, 40).
		WillReturnRows(gymRows(Gym{
			ID: 1, OwnerEmail: "owner@example.com", Name: "Iron Temple",
			MaxUsers: 40, CurrentUsers: 12, IsActive: true, CreatedAt: time.Now(),
		}))

	g, err := repo.IncreaseCapacity(context.Background(), 1, 40)

	assert.NoError(t, err)
	assert.Equal(t, 40, g.MaxUsers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_IncreaseCapacity_BelowCurrentMembers(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND current_users <= $2`)).
		WithArgs(1, 5).
		WillReturnError(sql.ErrNoRows)
	// The gym exists, so the zero-row update means a capacity violation.
	mock.ExpectQuery(regexp.QuoteMeta(`FROM gyms`)).
		WithArgs(1).
		WillReturnRows(gymRows(Gym{
			ID: 1, OwnerEmail: "owner@example.com",
			MaxUsers: 15, CurrentUsers: 10, IsActive: true, CreatedAt: time.Now(),
		}))

	g, err := repo.IncreaseCapacity(context.Background(), 1, 5)

	assert.ErrorIs(t, err, ErrInvalidCapacity)
	assert.Nil(t, g)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_IncreaseCapacity_GymMissing(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND current_users <= $2`)).
		WithArgs(99, 40).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM gyms`)).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	g, err := repo.IncreaseCapacity(context.Background(), 99, 40)

	assert.ErrorIs(t, err, ErrGymNotFound)
	assert.Nil(t, g)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Deactivate(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectExec(regexp.QuoteMeta(`SET is_active = FALSE`)).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Deactivate(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}
