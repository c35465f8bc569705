package interfaces

import (
	"context"
	"errors"

	domain "fittrack/internal/domain/routine"
)

// ErrSlugExists возвращается, когда слаг программы занят и повторная
// генерация тоже завершилась конфликтом.
var ErrSlugExists = errors.New("slug already exists")

// RoutineRepository определяет контракт для работы с программами тренировок.
type RoutineRepository interface {
	// Create сохраняет программу вместе с её упражнениями в одной транзакции
	// и заполняет идентификаторы. Если слаг пуст, он генерируется из названия
	// с разрешением коллизий; гонка на уникальном индексе слага разрешается
	// одной повторной попыткой, после чего возвращается ErrSlugExists.
	Create(ctx context.Context, r *domain.Routine, exercises []domain.Exercise) error

	// GetBySlug возвращает программу по слагу вместе с автором и упражнениями
	// в порядке display_order. Возвращает (nil, ErrNotFound), если программы нет.
	GetBySlug(ctx context.Context, slug string) (*domain.Routine, error)

	// List возвращает все программы, новые первыми, вместе с авторами.
	List(ctx context.Context) ([]domain.Routine, error)

	// ListByUser возвращает программы указанного владельца, новые первыми.
	ListByUser(ctx context.Context, userID int64) ([]domain.Routine, error)
}
