package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	userdomain "fittrack/internal/domain/user"
	repo "fittrack/internal/repository/interfaces"
)

// newMockDB поднимает GORM поверх sqlmock, чтобы тестировать репозитории без живой БД.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return gdb, mock
}

func TestUserCreateFillsID(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectCommit()

	u := userdomain.NewUser("alice", "alice@example.com", "$2a$10$hash")
	err := r.Create(context.Background(), u)

	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email_unique"})
	mock.ExpectRollback()

	u := userdomain.NewUser("alice", "taken@example.com", "$2a$10$hash")
	err := r.Create(context.Background(), u)

	require.ErrorIs(t, err, repo.ErrEmailExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "username", "email", "password_hash", "created_at", "updated_at"}).
			AddRow(int64(3), "bob", "bob@example.com", "$2a$10$hash", now, now))

	u, err := r.GetByEmail(context.Background(), "bob@example.com")

	require.NoError(t, err)
	require.Equal(t, int64(3), u.ID)
	require.Equal(t, "bob", u.Username)
	require.Equal(t, "bob@example.com", u.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByEmailNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at", "updated_at"}))

	_, err := r.GetByEmail(context.Background(), "ghost@example.com")

	require.ErrorIs(t, err, repo.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDeleteNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "users" WHERE`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := r.Delete(context.Background(), 99)

	require.ErrorIs(t, err, repo.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email_unique"}

	require.True(t, isUniqueViolation(pgErr))
	require.True(t, isUniqueViolation(pgErr, "idx_users_email_unique"))
	require.False(t, isUniqueViolation(pgErr, "idx_routines_slug_unique"))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, isUniqueViolation(nil))

	// Fallback по тексту ошибки, когда структурированная ошибка недоступна
	textErr := errorString(`duplicate key value violates unique constraint "idx_users_email_unique" (SQLSTATE 23505)`)
	require.True(t, isUniqueViolation(textErr))
	require.True(t, isUniqueViolation(textErr, "idx_users_email_unique"))
	require.False(t, isUniqueViolation(textErr, "idx_routines_slug_unique"))
}

// errorString — простая ошибка без обёрток для проверки текстового fallback.
type errorString string

func (e errorString) Error() string { return string(e) }
