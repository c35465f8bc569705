package routine

import (
	"time"

	"fittrack/internal/domain/user"
)

// Difficulty описывает уровень сложности программы тренировок.
// Значения хранятся в БД как есть.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"     // начальный
	DifficultyIntermediate Difficulty = "Intermediate" // средний
	DifficultyAdvanced     Difficulty = "Advanced"     // продвинутый
)

// Valid сообщает, является ли значение одним из допустимых уровней сложности.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// DefaultWeightUnit — единица веса по умолчанию для упражнений.
const DefaultWeightUnit = "kg"

// Routine представляет доменную модель программы тренировок.
//
// Слаг уникален глобально и выводится из названия при первом сохранении;
// за уникальность отвечает хранилище.
type Routine struct {
	ID          int64      // Уникальный идентификатор
	UserID      int64      // Владелец программы
	Name        string     // Название
	Description string     // Описание
	Difficulty  Difficulty // Уровень сложности
	Slug        string     // URL-безопасный идентификатор (уникальный)

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время последнего обновления

	// Ассоциации, заполняемые хранилищем при чтении.
	Owner     *user.User // Автор программы
	Exercises []Exercise // Упражнения в порядке display_order
}

// Exercise представляет упражнение внутри программы тренировок.
// Упражнения создаются только вместе с программой и по отдельности не изменяются.
type Exercise struct {
	ID         int64    // Уникальный идентификатор
	RoutineID  int64    // Программа, к которой относится упражнение
	Name       string   // Название
	Sets       int      // Количество подходов (> 0)
	Reps       int      // Количество повторений (> 0)
	Weight     *float64 // Вес (опционально, >= 0)
	WeightUnit string   // Единица веса, по умолчанию DefaultWeightUnit
	Order      int      // Позиция в программе (индекс из формы, без перенумерации)
	Notes      string   // Заметки (опционально)
}

// NewRoutine — фабрика для создания новой программы на доменном уровне.
// Слаг остаётся пустым: его присваивает хранилище при сохранении.
func NewRoutine(userID int64, name, description string, difficulty Difficulty) *Routine {
	now := time.Now().UTC()
	return &Routine{
		UserID:      userID,
		Name:        name,
		Description: description,
		Difficulty:  difficulty,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
