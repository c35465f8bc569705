package interfaces

import (
	"context"
	"errors"

	domain "fittrack/internal/domain/user"
)

// ErrNotFound возвращается, когда сущность не найдена в хранилище.
var ErrNotFound = errors.New("entity not found")

// ErrEmailExists возвращается, когда пользователь с таким email уже существует.
var ErrEmailExists = errors.New("email already exists")

// UserRepository определяет контракт для работы с пользователями на уровне хранилища.
//
// Интерфейс оперирует доменной моделью User и не раскрывает деталей реализации (GORM, SQL и т.п.).
type UserRepository interface {
	// Create создает нового пользователя и заполняет user.ID.
	// Возвращает ErrEmailExists, если email уже используется.
	Create(ctx context.Context, user *domain.User) error

	// GetByID возвращает пользователя по идентификатору.
	// Возвращает (nil, ErrNotFound), если пользователь не найден.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail возвращает пользователя по email.
	// Возвращает (nil, ErrNotFound), если пользователь не найден.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Delete удаляет пользователя. Каскадное удаление его программ и упражнений
	// обеспечивается ограничениями схемы (ON DELETE CASCADE).
	// Возвращает ErrNotFound, если пользователя не существует.
	Delete(ctx context.Context, id int64) error
}
