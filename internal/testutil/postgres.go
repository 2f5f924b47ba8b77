package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/tareas-api/internal/model"
	"github.com/BuzzLyutic/tareas-api/internal/store"
)

// SetupTestDB поднимает PostgreSQL в testcontainers и применяет миграции.
// Без Docker или в режиме -short тест пропускается
func SetupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	if err := store.Migrate(connStr, zap.NewNop()); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	cleanup := func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// TruncateTables очищает все таблицы
func TruncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), "TRUNCATE tasks, idempotency_keys RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// SeedTasks создает count задач владельца, каждая третья - завершенная
func SeedTasks(t *testing.T, pool *pgxpool.Pool, owner model.OwnerID, count int) []int64 {
	t.Helper()
	ctx := context.Background()

	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		var id int64
		err := pool.QueryRow(ctx, `
			INSERT INTO tasks (owner_id, name, description, priority, due_date, time, completed, category)
			VALUES ($1, $2, '', $3, $4, '09:30', $5, $6)
			RETURNING id
		`, int64(owner), fmt.Sprintf("Task %d", i+1), (i%3)+1,
			time.Date(2024, time.May, 1+i%28, 0, 0, 0, 0, time.UTC), i%3 == 2, fmt.Sprintf("cat-%d", i%2),
		).Scan(&id)
		if err != nil {
			t.Fatalf("Failed to seed task: %v", err)
		}
		ids = append(ids, id)
	}

	return ids
}

// SampleInput - валидная задача для тестов
func SampleInput() model.TaskInput {
	return model.TaskInput{
		Name:        "Buy milk",
		Description: "Go to the supermarket and buy milk and bread.",
		Priority:    2,
		DueDate:     model.NewDate(2024, time.May, 31),
		Time:        "12:00",
		Category:    "Shopping",
	}
}
