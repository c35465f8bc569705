package auth

import (
	"context"
	"errors"
	"fmt"

	domain "fittrack/internal/domain/user"
	repo "fittrack/internal/repository/interfaces"
	"fittrack/pkg/password"
)

// Service описывает usecase-слой, связанный с аутентификацией:
// регистрацию и вход по email/паролю.
//
// Установка и очистка сессии — ответственность handler-слоя.
type Service interface {
	// Signup регистрирует пользователя и возвращает созданную доменную модель.
	// Возвращает ErrEmailTaken, если email уже занят на момент проверки,
	// и repo.ErrEmailExists, если конкурент занял email между проверкой и вставкой.
	Signup(ctx context.Context, username, email, password string) (*domain.User, error)

	// Login выполняет вход по email/паролю.
	// Неизвестный email и неверный пароль неразличимы для вызывающей стороны:
	// оба случая возвращают ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*domain.User, error)
}

// Ошибки бизнес-логики usecase-слоя.
var (
	ErrEmailTaken         = fmt.Errorf("email already taken")
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")
)

type service struct {
	users repo.UserRepository
}

// NewService создаёт новый auth usecase-сервис.
func NewService(users repo.UserRepository) Service {
	return &service{users: users}
}

// Signup регистрирует нового пользователя.
func (s *service) Signup(ctx context.Context, username, email, rawPassword string) (*domain.User, error) {
	if username == "" || email == "" || rawPassword == "" {
		return nil, fmt.Errorf("username, email and password are required")
	}

	// Предварительная проверка даёт полевую ошибку формы вместо общей;
	// окончательную уникальность гарантирует индекс в БД.
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	// Хешируем пароль на уровне usecase.
	hashed, err := password.Hash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.NewUser(username, email, hashed)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login выполняет вход по email/паролю.
func (s *service) Login(ctx context.Context, email, rawPassword string) (*domain.User, error) {
	if email == "" || rawPassword == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(user.PasswordHash, rawPassword) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
