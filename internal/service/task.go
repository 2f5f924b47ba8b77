package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/BuzzLyutic/tareas-api/internal/model"
	"github.com/BuzzLyutic/tareas-api/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

const (
	MinValueBound = 10
	MaxValueBound = 5000000
	MaxLimit      = 1000
)

// HH:MM, часы 00-23, минуты 00-59
var timeOfDay = regexp.MustCompile(`^(?:[01]\d|2[0-3]):[0-5]\d$`)

type TaskService struct {
	repo repo.TaskRepository
}

func NewTaskService(repo repo.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) Create(ctx context.Context, owner model.OwnerID, in model.TaskInput, idempKey string) (model.Task, error) {
	if err := validateOwner(owner); err != nil {
		return model.Task{}, err
	}
	if err := s.validate(in); err != nil { // Валидация модели на корректность введенных данных
		return model.Task{}, err
	}

	if idempKey != "" { // Обеспечение идемпотентности - если ключ с ресурсом уже существует, мы не создаем его еще раз
		existingID, err := s.repo.GetIdempotencyKey(ctx, owner, idempKey)
		if err == nil {
			return s.repo.Get(ctx, owner, existingID)
		}
		if !errors.Is(err, repo.ErrorNotFound) {
			return model.Task{}, err
		}
	}

	// Создание новой задачи
	resource, err := s.repo.Create(ctx, owner, in)
	if err != nil {
		return resource, err
	}

	// Сохранение нового ключа
	if idempKey != "" {
		if err := s.repo.SaveIdempotencyKey(ctx, owner, idempKey, resource.ID); err != nil {
			return resource, err
		}
		return s.resolveIdempotencyRace(ctx, owner, idempKey, resource)
	}

	return resource, nil
}

// resolveIdempotencyRace: при параллельном создании с одним ключом сохраняется только первый ключ.
// Проигравший запрос удаляет свою задачу и возвращает ту, на которую указывает ключ
func (s *TaskService) resolveIdempotencyRace(ctx context.Context, owner model.OwnerID, idempKey string, created model.Task) (model.Task, error) {
	storedID, err := s.repo.GetIdempotencyKey(ctx, owner, idempKey)
	if err != nil {
		return created, err
	}
	if storedID == created.ID {
		return created, nil
	}

	if err := s.repo.Delete(ctx, owner, created.ID); err != nil && !errors.Is(err, repo.ErrorNotFound) {
		return model.Task{}, err
	}
	return s.repo.Get(ctx, owner, storedID)
}

func (s *TaskService) Get(ctx context.Context, owner model.OwnerID, id int64) (model.Task, error) {
	return s.repo.Get(ctx, owner, id)
}

func (s *TaskService) List(ctx context.Context, owner model.OwnerID, filter model.TaskFilter) ([]model.Task, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	if filter.Limit > MaxLimit {
		filter.Limit = MaxLimit
	}
	return s.repo.List(ctx, owner, filter)
}

func (s *TaskService) Update(ctx context.Context, owner model.OwnerID, id int64, in model.TaskInput) (model.Task, error) {
	if err := s.validate(in); err != nil {
		return model.Task{}, err
	}
	return s.repo.Update(ctx, owner, id, in)
}

func (s *TaskService) Delete(ctx context.Context, owner model.OwnerID, id int64) error {
	return s.repo.Delete(ctx, owner, id)
}

func (s *TaskService) ListByDueDate(ctx context.Context, owner model.OwnerID, date model.Date) ([]model.Task, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: due_date is required", ErrValidation)
	}
	return s.repo.ListByDueDate(ctx, owner, date)
}

func (s *TaskService) ListByPriority(ctx context.Context, owner model.OwnerID, priority int) ([]model.Task, error) {
	if err := validatePriority(priority); err != nil {
		return nil, err
	}
	return s.repo.ListByPriority(ctx, owner, priority)
}

func (s *TaskService) ListByCategory(ctx context.Context, owner model.OwnerID, category string) ([]model.Task, error) {
	return s.repo.ListByCategory(ctx, owner, category)
}

func (s *TaskService) MarkComplete(ctx context.Context, owner model.OwnerID, id int64) (model.Task, error) {
	return s.repo.MarkComplete(ctx, owner, id)
}

func (s *TaskService) ListIncomplete(ctx context.Context, owner model.OwnerID) ([]model.Task, error) {
	return s.repo.ListIncomplete(ctx, owner)
}

func (s *TaskService) DeleteCompleted(ctx context.Context, owner model.OwnerID) error {
	return s.repo.DeleteCompleted(ctx, owner)
}

func (s *TaskService) GetStats(ctx context.Context, owner model.OwnerID) (model.Stats, error) {
	return s.repo.GetStats(ctx, owner)
}

func (s *TaskService) validate(in model.TaskInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if err := validatePriority(in.Priority); err != nil {
		return err
	}
	if in.DueDate.IsZero() {
		return fmt.Errorf("%w: due_date is required", ErrValidation)
	}
	if !timeOfDay.MatchString(in.Time) {
		return fmt.Errorf("%w: time must be HH:MM", ErrValidation)
	}
	return nil
}

func validatePriority(priority int) error {
	if priority < 1 || priority > 3 {
		return fmt.Errorf("%w: priority must be 1, 2 or 3", ErrValidation)
	}
	return nil
}

func validateOwner(owner model.OwnerID) error {
	if owner < 1 {
		return fmt.Errorf("%w: owner must be positive", ErrValidation)
	}
	return nil
}

func validateFilter(f model.TaskFilter) error {
	for _, bound := range []*int64{f.MinValue, f.MaxValue} {
		if bound != nil && (*bound < MinValueBound || *bound > MaxValueBound) {
			return fmt.Errorf("%w: value bounds must be within [%d, %d]", ErrValidation, MinValueBound, MaxValueBound)
		}
	}
	if f.Priority != nil {
		if err := validatePriority(*f.Priority); err != nil {
			return err
		}
	}
	if f.Offset < 0 || f.Limit < 0 {
		return fmt.Errorf("%w: offset and limit must not be negative", ErrValidation)
	}
	return nil
}
