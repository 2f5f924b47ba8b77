package model

import "time"

// OwnerID идентифицирует владельца задач. Всегда берется из учетных данных, не из тела запроса
type OwnerID int64

type Task struct {
	ID          int64     `json:"id"`
	OwnerID     OwnerID   `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Priority    int       `json:"priority"`
	DueDate     Date      `json:"due_date"`
	Time        string    `json:"time"`
	Completed   bool      `json:"completed"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskInput - тело запроса на создание/обновление
type TaskInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	DueDate     Date   `json:"due_date"`
	Time        string `json:"time"`
	Completed   bool   `json:"completed"`
	Category    string `json:"category"`
}

// TaskFilter: nil означает, что фильтр не применяется
type TaskFilter struct {
	MinValue  *int64
	MaxValue  *int64
	DueDate   *Date
	Priority  *int
	Category  *string
	Completed *bool
	Offset    int
	Limit     int
}

type Stats struct {
	Total      int         `json:"total"`
	Completed  int         `json:"completed"`
	Pending    int         `json:"pending"`
	ByPriority map[int]int `json:"by_priority"`
}
