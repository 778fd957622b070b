package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/jsonfeed-views/app/database"
	"github.com/lysyi3m/jsonfeed-views/app/source"
)

// SyncSourceTask records a configured source in the database so its fetch
// schedule can be tracked.
type SyncSourceTask struct {
	Task
	Config     *source.Config
	sourceRepo database.SourceRepository
}

func NewSyncSourceTask(config *source.Config, sourceRepo database.SourceRepository) *SyncSourceTask {
	return &SyncSourceTask{
		Task:       NewTask(TaskTypeSyncSource, config.Name),
		Config:     config,
		sourceRepo: sourceRepo,
	}
}

func (t *SyncSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.sourceRepo.UpsertSource(t.Config.Name, t.Config.URL); err != nil {
		return fmt.Errorf("failed to sync source to database: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.SourceName,
		"duration", t.GetDuration())

	return nil
}
