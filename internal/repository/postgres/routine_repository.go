package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	domain "fittrack/internal/domain/routine"
	repo "fittrack/internal/repository/interfaces"
	"fittrack/pkg/slug"
)

// slugMaxLen соответствует размеру колонки routines.slug.
const slugMaxLen = 250

// pgRoutine представляет ORM-модель для таблицы routines.
type pgRoutine struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      int64     `gorm:"column:user_id;not null"`
	Name        string    `gorm:"column:name;type:varchar(200);not null"`
	Description string    `gorm:"column:description;type:text;not null"`
	Difficulty  string    `gorm:"column:difficulty;type:varchar(20);not null"`
	Slug        string    `gorm:"column:slug;type:varchar(250);not null"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamptz;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:timestamptz;not null"`

	Owner     *pgUser      `gorm:"foreignKey:UserID;references:ID"`
	Exercises []pgExercise `gorm:"foreignKey:RoutineID;references:ID;constraint:OnDelete:CASCADE"`
}

func (pgRoutine) TableName() string {
	return "routines"
}

// pgExercise представляет ORM-модель для таблицы exercises.
type pgExercise struct {
	ID         int64    `gorm:"column:id;primaryKey;autoIncrement"`
	RoutineID  int64    `gorm:"column:routine_id;not null"`
	Name       string   `gorm:"column:name;type:varchar(200);not null"`
	Sets       int      `gorm:"column:sets;not null"`
	Reps       int      `gorm:"column:reps;not null"`
	Weight     *float64 `gorm:"column:weight;type:numeric(6,2)"`
	WeightUnit string   `gorm:"column:weight_unit;type:varchar(10);not null"`
	Order      int      `gorm:"column:display_order;not null"`
	Notes      string   `gorm:"column:notes;type:text;not null"`
}

func (pgExercise) TableName() string {
	return "exercises"
}

func (m *pgRoutine) toDomain() *domain.Routine {
	rt := &domain.Routine{
		ID:          m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		Description: m.Description,
		Difficulty:  domain.Difficulty(m.Difficulty),
		Slug:        m.Slug,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Owner != nil {
		rt.Owner = m.Owner.toDomain()
	}
	if len(m.Exercises) > 0 {
		rt.Exercises = make([]domain.Exercise, 0, len(m.Exercises))
		for i := range m.Exercises {
			rt.Exercises = append(rt.Exercises, *m.Exercises[i].toDomain())
		}
	}
	return rt
}

func (m *pgExercise) toDomain() *domain.Exercise {
	return &domain.Exercise{
		ID:         m.ID,
		RoutineID:  m.RoutineID,
		Name:       m.Name,
		Sets:       m.Sets,
		Reps:       m.Reps,
		Weight:     m.Weight,
		WeightUnit: m.WeightUnit,
		Order:      m.Order,
		Notes:      m.Notes,
	}
}

func fromDomainRoutine(rt *domain.Routine) *pgRoutine {
	return &pgRoutine{
		ID:          rt.ID,
		UserID:      rt.UserID,
		Name:        rt.Name,
		Description: rt.Description,
		Difficulty:  string(rt.Difficulty),
		Slug:        rt.Slug,
		CreatedAt:   rt.CreatedAt,
		UpdatedAt:   rt.UpdatedAt,
	}
}

func fromDomainExercise(e *domain.Exercise) *pgExercise {
	return &pgExercise{
		ID:         e.ID,
		RoutineID:  e.RoutineID,
		Name:       e.Name,
		Sets:       e.Sets,
		Reps:       e.Reps,
		Weight:     e.Weight,
		WeightUnit: e.WeightUnit,
		Order:      e.Order,
		Notes:      e.Notes,
	}
}

// RoutineRepository реализует repo.RoutineRepository с использованием GORM и Postgres.
type RoutineRepository struct {
	db *gorm.DB
}

// Убедимся на этапе компиляции, что структура реализует интерфейс.
var _ repo.RoutineRepository = (*RoutineRepository)(nil)

// NewRoutineRepository создает новый репозиторий программ тренировок.
func NewRoutineRepository(db *gorm.DB) *RoutineRepository {
	return &RoutineRepository{db: db}
}

// nextFreeSlug подбирает свободный слаг для названия: сначала базовый,
// затем с числовым суффиксом (base-1, base-2, ...) до первого незанятого.
// Между проверкой и вставкой слаг может занять конкурент; эту гонку
// разрешает Create одной повторной попыткой.
func (r *RoutineRepository) nextFreeSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "routine"
	}

	candidate := base
	for n := 1; ; n++ {
		var count int64
		err := r.db.WithContext(ctx).
			Model(&pgRoutine{}).
			Where("slug = ?", candidate).
			Count(&count).Error
		if err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}

		suffix := "-" + strconv.Itoa(n)
		b := base
		// Суффикс не должен вытолкнуть слаг за размер колонки
		if len(b)+len(suffix) > slugMaxLen {
			b = strings.TrimRight(b[:slugMaxLen-len(suffix)], "-")
		}
		candidate = b + suffix
	}
}

// isSlugViolation проверяет, что ошибка вызвана уникальным индексом слага.
func isSlugViolation(err error) bool {
	return isUniqueViolation(err, "idx_routines_slug_unique") ||
		strings.Contains(err.Error(), "idx_routines_slug_unique")
}

// Create сохраняет программу вместе с упражнениями в одной транзакции.
// Пустой слаг генерируется из названия; если между проверкой и вставкой слаг
// занял конкурент, генерация и вставка повторяются ровно один раз.
func (r *RoutineRepository) Create(ctx context.Context, rt *domain.Routine, exercises []domain.Exercise) error {
	generated := rt.Slug == ""
	if generated {
		s, err := r.nextFreeSlug(ctx, rt.Name)
		if err != nil {
			return err
		}
		rt.Slug = s
	}

	err := r.createTx(ctx, rt, exercises)
	if err == nil {
		return nil
	}
	if !isSlugViolation(err) {
		return err
	}
	if !generated {
		// Слаг задан вызывающей стороной, перегенерировать его мы не вправе
		return repo.ErrSlugExists
	}

	// Гонка на уникальном индексе: повторная генерация теперь видит
	// закоммиченного конкурента и выберет следующий суффикс.
	s, serr := r.nextFreeSlug(ctx, rt.Name)
	if serr != nil {
		return serr
	}
	rt.Slug = s

	err = r.createTx(ctx, rt, exercises)
	if err == nil {
		return nil
	}
	if isSlugViolation(err) {
		return repo.ErrSlugExists
	}
	return err
}

// createTx выполняет вставку программы и её упражнений в одной транзакции.
// Идентификаторы копируются в доменные модели только после успешного коммита,
// чтобы повторная попытка работала с чистыми данными.
func (r *RoutineRepository) createTx(ctx context.Context, rt *domain.Routine, exercises []domain.Exercise) error {
	model := fromDomainRoutine(rt)
	models := make([]*pgExercise, len(exercises))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		for i := range exercises {
			m := fromDomainExercise(&exercises[i])
			m.ID = 0
			m.RoutineID = model.ID
			if err := tx.Create(m).Error; err != nil {
				return err
			}
			models[i] = m
		}
		return nil
	})
	if err != nil {
		return err
	}

	rt.ID = model.ID
	rt.CreatedAt = model.CreatedAt
	rt.UpdatedAt = model.UpdatedAt
	for i := range exercises {
		exercises[i].ID = models[i].ID
		exercises[i].RoutineID = models[i].RoutineID
	}
	return nil
}

// GetBySlug возвращает программу по слагу вместе с автором и упражнениями.
func (r *RoutineRepository) GetBySlug(ctx context.Context, s string) (*domain.Routine, error) {
	var model pgRoutine
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Exercises", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, id ASC")
		}).
		Where("slug = ?", s).
		Take(&model).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.toDomain(), nil
}

// List возвращает все программы, новые первыми.
func (r *RoutineRepository) List(ctx context.Context) ([]domain.Routine, error) {
	return r.listByCondition(ctx, "", nil)
}

// ListByUser возвращает программы указанного владельца, новые первыми.
func (r *RoutineRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Routine, error) {
	return r.listByCondition(ctx, "user_id = ?", []interface{}{userID})
}

func (r *RoutineRepository) listByCondition(ctx context.Context, query string, args []interface{}) ([]domain.Routine, error) {
	db := r.db.WithContext(ctx).Preload("Owner").Order("created_at DESC")
	if query != "" {
		db = db.Where(query, args...)
	}

	var models []pgRoutine
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}

	routines := make([]domain.Routine, 0, len(models))
	for i := range models {
		routines = append(routines, *models[i].toDomain())
	}
	return routines, nil
}
