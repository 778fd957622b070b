package tasks

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

type TaskType string

const (
	TaskTypeImportSource TaskType = "import_source"
	TaskTypeSyncSource   TaskType = "sync_source"
)

const (
	DefaultMaxRetries = 3
	maxRetryDelay     = 30 * time.Second
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetSourceName() string
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	Start()
	GetDuration() time.Duration
}

type Task struct {
	ID         string
	Type       TaskType
	SourceName string
	RetryCount int
	MaxRetries int
	StartedAt  *time.Time
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetSourceName() string {
	return t.SourceName
}

func (t *Task) GetRetryCount() int {
	return t.RetryCount
}

func (t *Task) GetMaxRetries() int {
	return t.MaxRetries
}

func (t *Task) IncrementRetryCount() {
	t.RetryCount++
}

func (t *Task) CanRetry() bool {
	return t.RetryCount < t.MaxRetries
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

// RetryDelay doubles with every attempt: 1s, 2s, 4s... capped at 30s.
func RetryDelay(retryCount int) time.Duration {
	if retryCount < 1 {
		return 0
	}
	if retryCount > 6 {
		return maxRetryDelay
	}
	delay := time.Duration(1<<uint(retryCount-1)) * time.Second
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func NewTask(taskType TaskType, sourceName string) Task {
	uniqueID := fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Intn(10000))

	return Task{
		ID:         uniqueID,
		Type:       taskType,
		SourceName: sourceName,
		MaxRetries: DefaultMaxRetries,
	}
}
