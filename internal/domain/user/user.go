package user

import (
	"time"
)

// User представляет доменную модель пользователя.
//
// Важно: эта модель описывает бизнес-сущность и не зависит от деталей транспорта (HTTP)
// и конкретного представления в БД.
type User struct {
	ID           int64  // Уникальный идентификатор (BIGSERIAL в БД, 0 до первого сохранения)
	Username     string // Отображаемое имя
	Email        string // Email (уникальный логин)
	PasswordHash string // Хэш пароля; открытый пароль нигде не хранится

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время последнего обновления
}

// NewUser — фабрика для создания нового пользователя на доменном уровне.
// Предполагается, что валидация входных данных и хеширование пароля
// выполняются на уровне usecase-слоя до вызова этой функции.
// Идентификатор присваивается базой данных при сохранении.
func NewUser(username, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
