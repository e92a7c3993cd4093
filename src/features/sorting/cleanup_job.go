package sorting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"waxwing/src/features/history"
	"waxwing/src/features/jobs"

	"github.com/google/uuid"
)

// CleanupTask implements jobs.Task for pruning stale position options.
type CleanupTask struct {
	service *Service
	history *history.Service
}

// NewCleanupTask creates a new CleanupTask.
func NewCleanupTask(service *Service, historySvc *history.Service) *CleanupTask {
	return &CleanupTask{service: service, history: historySvc}
}

// MetadataKeys returns the required metadata keys (none needed).
func (t *CleanupTask) MetadataKeys() []string {
	return []string{}
}

// Execute prunes unused position options from the workspace schema.
func (t *CleanupTask) Execute(ctx context.Context, job *jobs.Job, progressUpdater func(int, string)) (map[string]any, error) {
	run := &history.Run{
		ID:        uuid.NewString(),
		Kind:      "cleanup",
		StartedAt: time.Now(),
	}

	progressUpdater(0, "Scanning position options")
	removed, err := t.service.CleanupOptions(ctx, func(done, total int, _ string) {
		if total == 0 {
			return
		}
		progressUpdater(done*100/total, fmt.Sprintf("Rebuilding options (%d/%d)", done, total))
	})

	run.FinishedAt = time.Now()
	run.Changed = removed
	switch {
	case errors.Is(err, context.Canceled):
		run.Status = "cancelled"
		run.Message = "Run cancelled"
	case err != nil:
		run.Status = "failed"
		run.Message = err.Error()
	default:
		run.Status = "completed"
		run.Message = fmt.Sprintf("Removed %d stale position options", removed)
	}
	t.history.Record(context.WithoutCancel(ctx), run)

	if err != nil {
		return nil, err
	}
	progressUpdater(100, run.Message)
	return map[string]any{"removed": removed}, nil
}

// Cleanup does nothing for option pruning runs.
func (t *CleanupTask) Cleanup(job *jobs.Job) error {
	return nil
}
