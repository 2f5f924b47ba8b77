package service

import (
	"context"
	"testing"
	"time"

	"github.com/BuzzLyutic/tareas-api/internal/model"
	"github.com/BuzzLyutic/tareas-api/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskRepository - мок репозитория
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, owner model.OwnerID, in model.TaskInput) (model.Task, error) {
	args := m.Called(ctx, owner, in)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Get(ctx context.Context, owner model.OwnerID, id int64) (model.Task, error) {
	args := m.Called(ctx, owner, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, owner model.OwnerID, filter model.TaskFilter) ([]model.Task, error) {
	args := m.Called(ctx, owner, filter)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, owner model.OwnerID, id int64, in model.TaskInput) (model.Task, error) {
	args := m.Called(ctx, owner, id, in)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, owner model.OwnerID, id int64) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func (m *MockTaskRepository) ListByDueDate(ctx context.Context, owner model.OwnerID, date model.Date) ([]model.Task, error) {
	args := m.Called(ctx, owner, date)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) ListByPriority(ctx context.Context, owner model.OwnerID, priority int) ([]model.Task, error) {
	args := m.Called(ctx, owner, priority)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) ListByCategory(ctx context.Context, owner model.OwnerID, category string) ([]model.Task, error) {
	args := m.Called(ctx, owner, category)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) MarkComplete(ctx context.Context, owner model.OwnerID, id int64) (model.Task, error) {
	args := m.Called(ctx, owner, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) ListIncomplete(ctx context.Context, owner model.OwnerID) ([]model.Task, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) DeleteCompleted(ctx context.Context, owner model.OwnerID) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}

func (m *MockTaskRepository) SaveIdempotencyKey(ctx context.Context, owner model.OwnerID, key string, resourceID int64) error {
	args := m.Called(ctx, owner, key, resourceID)
	return args.Error(0)
}

func (m *MockTaskRepository) GetIdempotencyKey(ctx context.Context, owner model.OwnerID, key string) (int64, error) {
	args := m.Called(ctx, owner, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) GetStats(ctx context.Context, owner model.OwnerID) (model.Stats, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(model.Stats), args.Error(1)
}

const owner model.OwnerID = 1

func validInput() model.TaskInput {
	return model.TaskInput{
		Name:     "Buy milk",
		Priority: 2,
		DueDate:  model.NewDate(2024, time.May, 31),
		Time:     "12:00",
		Category: "Shopping",
	}
}

func TestTaskService_Create(t *testing.T) {
	tests := []struct {
		name      string
		owner     model.OwnerID
		input     func() model.TaskInput
		idempKey  string
		setupMock func(*MockTaskRepository)
		wantErr   error
	}{
		{
			name:     "successful creation without idempotency key",
			owner:    owner,
			input:    validInput,
			idempKey: "",
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, owner, mock.MatchedBy(func(in model.TaskInput) bool {
					return in.Name == "Buy milk" && in.Priority == 2
				})).Return(model.Task{ID: 1, OwnerID: owner, Name: "Buy milk", Priority: 2}, nil)
			},
		},
		{
			name:  "validation error - empty name",
			owner: owner,
			input: func() model.TaskInput {
				in := validInput()
				in.Name = ""
				return in
			},
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name:  "validation error - invalid time",
			owner: owner,
			input: func() model.TaskInput {
				in := validInput()
				in.Time = "25:61"
				return in
			},
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name:      "validation error - missing owner",
			owner:     0,
			input:     validInput,
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name:     "idempotency - key exists",
			owner:    owner,
			input:    validInput,
			idempKey: "key-123",
			setupMock: func(m *MockTaskRepository) {
				m.On("GetIdempotencyKey", mock.Anything, owner, "key-123").Return(int64(42), nil)
				m.On("Get", mock.Anything, owner, int64(42)).Return(model.Task{ID: 42, OwnerID: owner}, nil)
			},
		},
		{
			name:     "idempotency - new key",
			owner:    owner,
			input:    validInput,
			idempKey: "key-456",
			setupMock: func(m *MockTaskRepository) {
				m.On("GetIdempotencyKey", mock.Anything, owner, "key-456").Return(int64(0), repo.ErrorNotFound).Once()
				m.On("Create", mock.Anything, owner, mock.Anything).Return(model.Task{ID: 1, OwnerID: owner}, nil)
				m.On("SaveIdempotencyKey", mock.Anything, owner, "key-456", int64(1)).Return(nil)
				m.On("GetIdempotencyKey", mock.Anything, owner, "key-456").Return(int64(1), nil).Once()
			},
		},
		{
			name:     "idempotency - lookup failure stops creation",
			owner:    owner,
			input:    validInput,
			idempKey: "key-789",
			setupMock: func(m *MockTaskRepository) {
				m.On("GetIdempotencyKey", mock.Anything, owner, "key-789").Return(int64(0), repo.ErrorUnavailable)
			},
			wantErr: repo.ErrorUnavailable,
		},
		{
			name:  "store unavailable propagates",
			owner: owner,
			input: validInput,
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, owner, mock.Anything).Return(model.Task{}, repo.ErrorUnavailable)
			},
			wantErr: repo.ErrorUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			service := NewTaskService(mockRepo)
			result, err := service.Create(context.Background(), tt.owner, tt.input(), tt.idempKey)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NotZero(t, result.ID)
				assert.Equal(t, tt.owner, result.OwnerID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_Create_ConcurrentSameKey(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	// Другой запрос успел сохранить ключ между проверкой и сохранением
	mockRepo.On("GetIdempotencyKey", mock.Anything, owner, "key-race").Return(int64(0), repo.ErrorNotFound).Once()
	mockRepo.On("Create", mock.Anything, owner, mock.Anything).Return(model.Task{ID: 7, OwnerID: owner}, nil)
	mockRepo.On("SaveIdempotencyKey", mock.Anything, owner, "key-race", int64(7)).Return(nil)
	mockRepo.On("GetIdempotencyKey", mock.Anything, owner, "key-race").Return(int64(42), nil).Once()
	mockRepo.On("Delete", mock.Anything, owner, int64(7)).Return(nil)
	mockRepo.On("Get", mock.Anything, owner, int64(42)).Return(model.Task{ID: 42, OwnerID: owner}, nil)

	service := NewTaskService(mockRepo)
	result, err := service.Create(context.Background(), owner, validInput(), "key-race")

	require.NoError(t, err)
	assert.Equal(t, int64(42), result.ID, "the task stored under the key wins")
	mockRepo.AssertExpectations(t)
}

func TestTaskService_List(t *testing.T) {
	tests := []struct {
		name      string
		filter    model.TaskFilter
		wantLimit int
		wantErr   bool
	}{
		{
			name:      "no limit",
			filter:    model.TaskFilter{},
			wantLimit: 0,
		},
		{
			name:      "custom limit",
			filter:    model.TaskFilter{Limit: 50},
			wantLimit: 50,
		},
		{
			name:      "limit too high is capped",
			filter:    model.TaskFilter{Limit: 5000},
			wantLimit: MaxLimit,
		},
		{
			name:      "value bounds in range",
			filter:    model.TaskFilter{MinValue: ptr(int64(10)), MaxValue: ptr(int64(5000000))},
			wantLimit: 0,
		},
		{
			name:    "value bound below range",
			filter:  model.TaskFilter{MinValue: ptr(int64(9))},
			wantErr: true,
		},
		{
			name:    "value bound above range",
			filter:  model.TaskFilter{MaxValue: ptr(int64(5000001))},
			wantErr: true,
		},
		{
			name:    "negative offset",
			filter:  model.TaskFilter{Offset: -1},
			wantErr: true,
		},
		{
			name:    "priority filter out of range",
			filter:  model.TaskFilter{Priority: ptr(4)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			if !tt.wantErr {
				mockRepo.On("List", mock.Anything, owner, mock.MatchedBy(func(f model.TaskFilter) bool {
					return f.Limit == tt.wantLimit
				})).Return([]model.Task{}, nil)
			}

			service := NewTaskService(mockRepo)
			_, err := service.List(context.Background(), owner, tt.filter)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				mockRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_Update(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Update", mock.Anything, owner, int64(1), mock.MatchedBy(func(in model.TaskInput) bool {
			return in.Name == "Updated"
		})).Return(model.Task{ID: 1, OwnerID: owner, Name: "Updated", Priority: 2}, nil)

		in := validInput()
		in.Name = "Updated"

		service := NewTaskService(mockRepo)
		result, err := service.Update(context.Background(), owner, 1, in)

		require.NoError(t, err)
		assert.Equal(t, "Updated", result.Name)
		mockRepo.AssertExpectations(t)
	})

	t.Run("not found propagates", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Update", mock.Anything, owner, int64(99), mock.Anything).Return(model.Task{}, repo.ErrorNotFound)

		service := NewTaskService(mockRepo)
		_, err := service.Update(context.Background(), owner, 99, validInput())

		assert.ErrorIs(t, err, repo.ErrorNotFound)
		mockRepo.AssertExpectations(t)
	})

	t.Run("invalid input never reaches the repository", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		in := validInput()
		in.Priority = 4

		service := NewTaskService(mockRepo)
		_, err := service.Update(context.Background(), owner, 1, in)

		assert.ErrorIs(t, err, ErrValidation)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTaskService_EqualityLists(t *testing.T) {
	due := model.NewDate(2024, time.May, 31)

	mockRepo := new(MockTaskRepository)
	mockRepo.On("ListByDueDate", mock.Anything, owner, due).Return([]model.Task{{ID: 1}}, nil)
	mockRepo.On("ListByPriority", mock.Anything, owner, 3).Return([]model.Task{{ID: 2}}, nil)
	mockRepo.On("ListByCategory", mock.Anything, owner, "Shopping").Return([]model.Task{}, nil)
	mockRepo.On("ListIncomplete", mock.Anything, owner).Return([]model.Task{{ID: 3}}, nil)

	service := NewTaskService(mockRepo)
	ctx := context.Background()

	byDate, err := service.ListByDueDate(ctx, owner, due)
	require.NoError(t, err)
	assert.Len(t, byDate, 1)

	byPriority, err := service.ListByPriority(ctx, owner, 3)
	require.NoError(t, err)
	assert.Len(t, byPriority, 1)

	byCategory, err := service.ListByCategory(ctx, owner, "Shopping")
	require.NoError(t, err)
	assert.Empty(t, byCategory)

	incomplete, err := service.ListIncomplete(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, incomplete, 1)

	_, err = service.ListByPriority(ctx, owner, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = service.ListByDueDate(ctx, owner, model.Date{})
	assert.ErrorIs(t, err, ErrValidation)

	mockRepo.AssertExpectations(t)
}

func TestTaskService_CompletionLifecycle(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("MarkComplete", mock.Anything, owner, int64(7)).Return(model.Task{ID: 7, Completed: true}, nil)
	mockRepo.On("DeleteCompleted", mock.Anything, owner).Return(nil)

	service := NewTaskService(mockRepo)

	task, err := service.MarkComplete(context.Background(), owner, 7)
	require.NoError(t, err)
	assert.True(t, task.Completed)

	require.NoError(t, service.DeleteCompleted(context.Background(), owner))
	mockRepo.AssertExpectations(t)
}

func TestTaskService_GetStats(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	expectedStats := model.Stats{
		Total:      17,
		Completed:  10,
		Pending:    7,
		ByPriority: map[int]int{1: 5, 2: 2, 3: 10},
	}

	mockRepo.On("GetStats", mock.Anything, owner).Return(expectedStats, nil)

	service := NewTaskService(mockRepo)
	stats, err := service.GetStats(context.Background(), owner)

	require.NoError(t, err)
	assert.Equal(t, expectedStats, stats)
	mockRepo.AssertExpectations(t)
}

func TestTaskService_Validate(t *testing.T) {
	service := &TaskService{}

	tests := []struct {
		name    string
		mutate  func(*model.TaskInput)
		wantErr bool
	}{
		{name: "valid task", mutate: func(in *model.TaskInput) {}},
		{name: "empty name", mutate: func(in *model.TaskInput) { in.Name = "" }, wantErr: true},
		{name: "whitespace name", mutate: func(in *model.TaskInput) { in.Name = "   " }, wantErr: true},
		{name: "priority too low", mutate: func(in *model.TaskInput) { in.Priority = 0 }, wantErr: true},
		{name: "priority too high", mutate: func(in *model.TaskInput) { in.Priority = 4 }, wantErr: true},
		{name: "missing due date", mutate: func(in *model.TaskInput) { in.DueDate = model.Date{} }, wantErr: true},
		{name: "midnight", mutate: func(in *model.TaskInput) { in.Time = "00:00" }},
		{name: "last minute", mutate: func(in *model.TaskInput) { in.Time = "23:59" }},
		{name: "hour 24", mutate: func(in *model.TaskInput) { in.Time = "24:00" }, wantErr: true},
		{name: "minute 60", mutate: func(in *model.TaskInput) { in.Time = "12:60" }, wantErr: true},
		{name: "25:61", mutate: func(in *model.TaskInput) { in.Time = "25:61" }, wantErr: true},
		{name: "single digit hour", mutate: func(in *model.TaskInput) { in.Time = "9:30" }, wantErr: true},
		{name: "with seconds", mutate: func(in *model.TaskInput) { in.Time = "09:30:00" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			err := service.validate(in)
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
