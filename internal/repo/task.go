package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/tareas-api/internal/model"
)

const taskColumns = `id, owner_id, name, description, priority, due_date, time, completed, category, created_at, updated_at`

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo { // Конструктор
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) Create(ctx context.Context, owner model.OwnerID, in model.TaskInput) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (owner_id, name, description, priority, due_date, time, completed, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+taskColumns,
		int64(owner), in.Name, in.Description, in.Priority, in.DueDate.Time, in.Time, in.Completed, in.Category,
	)
	t, err := scanTask(row)
	return t, mapError(err)
}

func (r *TaskRepo) Get(ctx context.Context, owner model.OwnerID, id int64) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`, id, int64(owner))

	t, err := scanTask(row)
	return t, mapError(err)
}

func (r *TaskRepo) List(ctx context.Context, owner model.OwnerID, filter model.TaskFilter) ([]model.Task, error) {
	// NULL в параметре - фильтр не применяется; LIMIT NULL - без ограничения
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE owner_id = $1
		  AND ($2::bigint IS NULL OR id >= $2)
		  AND ($3::bigint IS NULL OR id < $3)
		  AND ($4::date IS NULL OR due_date = $4)
		  AND ($5::integer IS NULL OR priority = $5)
		  AND ($6::text IS NULL OR category = $6)
		  AND ($7::boolean IS NULL OR completed = $7)
		ORDER BY id
		OFFSET $8
		LIMIT $9
	`

	var due *time.Time
	if filter.DueDate != nil {
		due = &filter.DueDate.Time
	}
	var limit *int
	if filter.Limit > 0 {
		limit = &filter.Limit
	}

	rows, err := r.pool.Query(ctx, query,
		int64(owner), filter.MinValue, filter.MaxValue, due, filter.Priority, filter.Category, filter.Completed,
		filter.Offset, limit,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, mapError(err)
		}
		tasks = append(tasks, t)
	}
	return tasks, mapError(rows.Err())
}

func (r *TaskRepo) Update(ctx context.Context, owner model.OwnerID, id int64, in model.TaskInput) (model.Task, error) {
	// completed, owner_id и id не меняются
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET name = $3, description = $4, category = $5, time = $6, priority = $7, due_date = $8, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+taskColumns,
		id, int64(owner), in.Name, in.Description, in.Category, in.Time, in.Priority, in.DueDate.Time,
	)

	t, err := scanTask(row)
	return t, mapError(err)
}

func (r *TaskRepo) Delete(ctx context.Context, owner model.OwnerID, id int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1 AND owner_id = $2", id, int64(owner))
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *TaskRepo) ListByDueDate(ctx context.Context, owner model.OwnerID, date model.Date) ([]model.Task, error) {
	return r.List(ctx, owner, model.TaskFilter{DueDate: &date})
}

func (r *TaskRepo) ListByPriority(ctx context.Context, owner model.OwnerID, priority int) ([]model.Task, error) {
	return r.List(ctx, owner, model.TaskFilter{Priority: &priority})
}

func (r *TaskRepo) ListByCategory(ctx context.Context, owner model.OwnerID, category string) ([]model.Task, error) {
	return r.List(ctx, owner, model.TaskFilter{Category: &category})
}

// MarkComplete идемпотентен: повторный вызов оставляет completed = true
func (r *TaskRepo) MarkComplete(ctx context.Context, owner model.OwnerID, id int64) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET completed = TRUE, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+taskColumns,
		id, int64(owner),
	)

	t, err := scanTask(row)
	return t, mapError(err)
}

func (r *TaskRepo) ListIncomplete(ctx context.Context, owner model.OwnerID) ([]model.Task, error) {
	completed := false
	return r.List(ctx, owner, model.TaskFilter{Completed: &completed})
}

// DeleteCompleted удаляет все завершенные задачи владельца в одной транзакции: либо все, либо ничего.
// Строки блокируются, чтобы удалить ровно тот набор, который был завершен на момент выборки
func (r *TaskRepo) DeleteCompleted(ctx context.Context, owner model.OwnerID) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT id FROM tasks
			WHERE owner_id = $1 AND completed
			FOR UPDATE
		`, int64(owner))
		if err != nil {
			return err
		}
		ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		_, err = tx.Exec(ctx, "DELETE FROM tasks WHERE owner_id = $1 AND id = ANY($2)", int64(owner), ids)
		return err
	})
	return mapError(err)
}

func (r *TaskRepo) SaveIdempotencyKey(ctx context.Context, owner model.OwnerID, key string, resourceID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (owner_id, key, resource_id) VALUES ($1, $2, $3)
		ON CONFLICT (owner_id, key) DO NOTHING
	`, int64(owner), key, resourceID)
	return mapError(err)
}

func (r *TaskRepo) GetIdempotencyKey(ctx context.Context, owner model.OwnerID, key string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		SELECT resource_id FROM idempotency_keys WHERE owner_id = $1 AND key = $2
	`, int64(owner), key).Scan(&id)

	return id, mapError(err)
}

// PurgeIdempotencyKeys удаляет ключи старше cutoff у всех владельцев
func (r *TaskRepo) PurgeIdempotencyKeys(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

func (r *TaskRepo) GetStats(ctx context.Context, owner model.OwnerID) (model.Stats, error) {
	stats := model.Stats{ByPriority: make(map[int]int)}

	rows, err := r.pool.Query(ctx, `
		SELECT priority, count(*), count(*) FILTER (WHERE completed)
		FROM tasks
		WHERE owner_id = $1
		GROUP BY priority
	`, int64(owner))
	if err != nil {
		return stats, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var priority, total, completed int
		if err := rows.Scan(&priority, &total, &completed); err != nil {
			return stats, mapError(err)
		}
		stats.ByPriority[priority] = total
		stats.Total += total
		stats.Completed += completed
	}
	stats.Pending = stats.Total - stats.Completed
	return stats, mapError(rows.Err())
}

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		t     model.Task
		owner int64
	)
	err := row.Scan(
		&t.ID, &owner, &t.Name, &t.Description, &t.Priority, &t.DueDate.Time, &t.Time,
		&t.Completed, &t.Category, &t.CreatedAt, &t.UpdatedAt,
	)
	t.OwnerID = model.OwnerID(owner)
	return t, err
}
