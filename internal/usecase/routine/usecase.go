package routine

import (
	"context"
	"fmt"

	domain "fittrack/internal/domain/routine"
	repo "fittrack/internal/repository/interfaces"
)

// ExerciseInput описывает одно упражнение при создании программы.
// Order — индекс строки из формы; он сохраняется как есть, без перенумерации.
type ExerciseInput struct {
	Name       string
	Sets       int
	Reps       int
	Weight     *float64
	WeightUnit string
	Order      int
	Notes      string
}

// CreateInput описывает данные для создания программы тренировок.
type CreateInput struct {
	Name        string
	Description string
	Difficulty  domain.Difficulty
	Exercises   []ExerciseInput
}

// Service описывает usecase-слой программ тренировок.
type Service interface {
	// Create создаёт программу с упражнениями от имени владельца.
	// Программа и упражнения сохраняются одной единицей: либо всё, либо ничего.
	// Возвращает repo.ErrSlugExists, если не удалось подобрать свободный слаг.
	Create(ctx context.Context, ownerID int64, input CreateInput) (*domain.Routine, error)

	// GetBySlug возвращает программу с автором и упражнениями.
	// Возвращает repo.ErrNotFound, если программы не существует.
	GetBySlug(ctx context.Context, slug string) (*domain.Routine, error)

	// List возвращает все программы, новые первыми.
	List(ctx context.Context) ([]domain.Routine, error)

	// ListByOwner возвращает программы владельца, новые первыми.
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Routine, error)
}

type service struct {
	routines repo.RoutineRepository
}

// NewService создаёт новый routine usecase-сервис.
func NewService(routines repo.RoutineRepository) Service {
	return &service{routines: routines}
}

// Create создаёт программу тренировок вместе с упражнениями.
func (s *service) Create(ctx context.Context, ownerID int64, in CreateInput) (*domain.Routine, error) {
	if ownerID <= 0 {
		return nil, fmt.Errorf("owner is required")
	}
	if in.Name == "" || in.Description == "" {
		return nil, fmt.Errorf("name and description are required")
	}
	if !in.Difficulty.Valid() {
		return nil, fmt.Errorf("unknown difficulty: %q", in.Difficulty)
	}

	exercises := make([]domain.Exercise, 0, len(in.Exercises))
	for _, e := range in.Exercises {
		if e.Name == "" || e.Sets <= 0 || e.Reps <= 0 {
			return nil, fmt.Errorf("exercise at position %d: name, sets and reps are required", e.Order)
		}
		if e.Weight != nil && *e.Weight < 0 {
			return nil, fmt.Errorf("exercise at position %d: weight must be non-negative", e.Order)
		}
		unit := e.WeightUnit
		if unit == "" {
			unit = domain.DefaultWeightUnit
		}
		exercises = append(exercises, domain.Exercise{
			Name:       e.Name,
			Sets:       e.Sets,
			Reps:       e.Reps,
			Weight:     e.Weight,
			WeightUnit: unit,
			Order:      e.Order,
			Notes:      e.Notes,
		})
	}

	rt := domain.NewRoutine(ownerID, in.Name, in.Description, in.Difficulty)
	if err := s.routines.Create(ctx, rt, exercises); err != nil {
		return nil, err
	}
	rt.Exercises = exercises
	return rt, nil
}

// GetBySlug возвращает программу по слагу.
func (s *service) GetBySlug(ctx context.Context, slug string) (*domain.Routine, error) {
	if slug == "" {
		return nil, repo.ErrNotFound
	}
	return s.routines.GetBySlug(ctx, slug)
}

// List возвращает все программы.
func (s *service) List(ctx context.Context) ([]domain.Routine, error) {
	return s.routines.List(ctx)
}

// ListByOwner возвращает программы владельца.
func (s *service) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Routine, error) {
	if ownerID <= 0 {
		return nil, fmt.Errorf("owner is required")
	}
	return s.routines.ListByUser(ctx, ownerID)
}
