package repo

import (
	"context"

	"github.com/BuzzLyutic/tareas-api/internal/model"
)

// TaskRepository определяет интерфейс для работы с задачами.
// Владелец - обязательный параметр каждой операции: чужие строки не видны и не изменяемы
type TaskRepository interface {
	Create(ctx context.Context, owner model.OwnerID, in model.TaskInput) (model.Task, error)
	Get(ctx context.Context, owner model.OwnerID, id int64) (model.Task, error)
	List(ctx context.Context, owner model.OwnerID, filter model.TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, owner model.OwnerID, id int64, in model.TaskInput) (model.Task, error)
	Delete(ctx context.Context, owner model.OwnerID, id int64) error

	ListByDueDate(ctx context.Context, owner model.OwnerID, date model.Date) ([]model.Task, error)
	ListByPriority(ctx context.Context, owner model.OwnerID, priority int) ([]model.Task, error)
	ListByCategory(ctx context.Context, owner model.OwnerID, category string) ([]model.Task, error)

	MarkComplete(ctx context.Context, owner model.OwnerID, id int64) (model.Task, error)
	ListIncomplete(ctx context.Context, owner model.OwnerID) ([]model.Task, error)
	DeleteCompleted(ctx context.Context, owner model.OwnerID) error

	SaveIdempotencyKey(ctx context.Context, owner model.OwnerID, key string, resourceID int64) error
	GetIdempotencyKey(ctx context.Context, owner model.OwnerID, key string) (int64, error)
	GetStats(ctx context.Context, owner model.OwnerID) (model.Stats, error)
}
