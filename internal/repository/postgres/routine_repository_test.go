package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	routinedomain "fittrack/internal/domain/routine"
	repo "fittrack/internal/repository/interfaces"
)

func slugTakenRows(taken bool) *sqlmock.Rows {
	count := 0
	if taken {
		count = 1
	}
	return sqlmock.NewRows([]string{"count"}).AddRow(count)
}

func expectSlugCheck(mock sqlmock.Sqlmock, candidate string, taken bool) {
	mock.ExpectQuery(`SELECT count\(\*\) FROM "routines" WHERE slug = \$1`).
		WithArgs(candidate).
		WillReturnRows(slugTakenRows(taken))
}

func expectRoutineInsert(mock sqlmock.Sqlmock, id int64) {
	mock.ExpectQuery(`INSERT INTO "routines"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))
}

func expectExerciseInsert(mock sqlmock.Sqlmock, id int64) {
	mock.ExpectQuery(`INSERT INTO "exercises"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))
}

func slugViolation() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "idx_routines_slug_unique"}
}

func testRoutine() *routinedomain.Routine {
	return routinedomain.NewRoutine(1, "Leg Day", "Сильная нижняя часть тела за шесть недель", routinedomain.DifficultyBeginner)
}

func testExercises() []routinedomain.Exercise {
	weight := 80.0
	return []routinedomain.Exercise{
		{Name: "Squats", Sets: 5, Reps: 5, Weight: &weight, WeightUnit: "kg", Order: 0},
		{Name: "Lunges", Sets: 3, Reps: 12, WeightUnit: "kg", Order: 2, Notes: "каждая нога"},
	}
}

func TestRoutineCreateGeneratesSlug(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewRoutineRepository(db)

	expectSlugCheck(mock, "leg-day", false)
	mock.ExpectBegin()
	expectRoutineInsert(mock, 10)
	expectExerciseInsert(mock, 100)
	expectExerciseInsert(mock, 101)
	mock.ExpectCommit()

	rt := testRoutine()
	exercises := testExercises()
	err := r.Create(context.Background(), rt, exercises)

	require.NoError(t, err)
	require.Equal(t, "leg-day", rt.Slug)
	require.Equal(t, int64(10), rt.ID)
	require.Equal(t, int64(100), exercises[0].ID)
	require.Equal(t, int64(10), exercises[0].RoutineID)
	require.Equal(t, int64(101), exercises[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutineCreateSkipsTakenSlugs(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewRoutineRepository(db)

	expectSlugCheck(mock, "leg-day", true)
	expectSlugCheck(mock, "leg-day-1", true)
	expectSlugCheck(mock, "leg-day-2", false)
	mock.ExpectBegin()
	expectRoutineInsert(mock, 11)
	mock.ExpectCommit()

	rt := testRoutine()
	err := r.Create(context.Background(), rt, nil)

	require.NoError(t, err)
	require.Equal(t, "leg-day-2", rt.Slug)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutineCreateRetriesOnceOnSlugRace(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewRoutineRepository(db)

	// Первая попытка: слаг свободен на момент проверки, но вставка
	// натыкается на уникальный индекс (конкурент успел раньше).
	expectSlugCheck(mock, "leg-day", false)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "routines"`).WillReturnError(slugViolation())
	mock.ExpectRollback()

	// Повторная генерация видит конкурента и берёт следующий суффикс.
	expectSlugCheck(mock, "leg-day", true)
	expectSlugCheck(mock, "leg-day-1", false)
	mock.ExpectBegin()
	expectRoutineInsert(mock, 12)
	expectExerciseInsert(mock, 120)
	expectExerciseInsert(mock, 121)
	mock.ExpectCommit()

	rt := testRoutine()
	exercises := testExercises()
	err := r.Create(context.Background(), rt, exercises)

	require.NoError(t, err)
	require.Equal(t, "leg-day-1", rt.Slug)
	require.Equal(t, int64(12), rt.ID)
	require.Equal(t, int64(120), exercises[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutineCreateSecondConflictGivesUp(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewRoutineRepository(db)

	expectSlugCheck(mock, "leg-day", false)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "routines"`).WillReturnError(slugViolation())
	mock.ExpectRollback()

	expectSlugCheck(mock, "leg-day", true)
	expectSlugCheck(mock, "leg-day-1", false)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "routines"`).WillReturnError(slugViolation())
	mock.ExpectRollback()

	rt := testRoutine()
	err := r.Create(context.Background(), rt, nil)

	require.ErrorIs(t, err, repo.ErrSlugExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutineCreateKeepsCallerSlug(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewRoutineRepository(db)

	// Заданный вызывающей стороной слаг не проверяется и не перегенерируется.
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "routines"`).WillReturnError(slugViolation())
	mock.ExpectRollback()

	rt := testRoutine()
	rt.Slug = "leg-day"
	err := r.Create(context.Background(), rt, nil)

	require.ErrorIs(t, err, repo.ErrSlugExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutineCreateRollsBackOnExerciseFailure(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewRoutineRepository(db)

	expectSlugCheck(mock, "leg-day", false)
	mock.ExpectBegin()
	expectRoutineInsert(mock, 13)
	mock.ExpectQuery(`INSERT INTO "exercises"`).
		WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "exercises_sets_check"})
	mock.ExpectRollback()

	rt := testRoutine()
	exercises := testExercises()
	err := r.Create(context.Background(), rt, exercises)

	require.Error(t, err)
	require.NotErrorIs(t, err, repo.ErrSlugExists)
	// Идентификаторы не заполняются, если транзакция не закоммичена
	require.Zero(t, rt.ID)
	require.Zero(t, exercises[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutineGetBySlugNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewRoutineRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "routines" WHERE slug = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "description", "difficulty", "slug", "created_at", "updated_at"}))

	_, err := r.GetBySlug(context.Background(), "ghost")

	require.ErrorIs(t, err, repo.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
