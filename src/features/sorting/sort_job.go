package sorting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"waxwing/src/features/history"
	"waxwing/src/features/jobs"

	"github.com/google/uuid"
)

// SortTask implements jobs.Task for catalog sorting runs.
type SortTask struct {
	service *Service
	history *history.Service
}

// NewSortTask creates a new SortTask.
func NewSortTask(service *Service, historySvc *history.Service) *SortTask {
	return &SortTask{service: service, history: historySvc}
}

// MetadataKeys returns the required metadata keys (none needed, the
// sort falls back to the configured defaults).
func (t *SortTask) MetadataKeys() []string {
	return []string{}
}

// requestFromJob builds the sort request from job metadata, falling
// back to the configured defaults for anything unset.
func (t *SortTask) requestFromJob(job *jobs.Job) (Request, error) {
	cfg := t.service.config.Get().Sorting
	req := Request{Key: Key(cfg.DefaultKey), Compact: cfg.Compact}

	if v, ok := job.Metadata["key"].(string); ok && v != "" {
		key, err := ParseKey(v)
		if err != nil {
			return req, err
		}
		req.Key = key
	}
	if v, ok := job.Metadata["descending"].(bool); ok {
		req.Descending = v
	}
	if v, ok := job.Metadata["compact"].(bool); ok {
		req.Compact = v
	}
	return req, nil
}

// Execute applies the sort and records the run in history.
func (t *SortTask) Execute(ctx context.Context, job *jobs.Job, progressUpdater func(int, string)) (map[string]any, error) {
	req, err := t.requestFromJob(job)
	if err != nil {
		return nil, err
	}

	run := &history.Run{
		ID:        uuid.NewString(),
		Kind:      "sort",
		StartedAt: time.Now(),
	}

	progressUpdater(0, fmt.Sprintf("Sorting by %s", req.Key))
	result, err := t.service.Run(ctx, req, func(done, total int, title string) {
		if total == 0 {
			return
		}
		progressUpdater(done*100/total, fmt.Sprintf("Writing position for %s", title))
	})

	run.FinishedAt = time.Now()
	if result != nil {
		run.Total = result.Total
		run.Changed = result.Changed
		run.Failed = len(result.Failed)
		for _, f := range result.Failed {
			run.Outcomes = append(run.Outcomes, history.Outcome{
				AlbumID: f.AlbumID,
				Title:   f.Title,
				Outcome: "failed",
				Detail:  f.Err.Error(),
			})
		}
	}
	switch {
	case errors.Is(err, context.Canceled):
		run.Status = "cancelled"
		run.Message = "Run cancelled"
	case err != nil:
		run.Status = "failed"
		run.Message = err.Error()
	case result != nil && len(result.Failed) > 0:
		run.Status = "partial"
		run.Message = fmt.Sprintf("%d of %d position writes failed", len(result.Failed), result.Changed)
	default:
		run.Status = "completed"
		run.Message = fmt.Sprintf("Sorted %d albums, %d positions rewritten", run.Total, result.Written)
	}
	t.history.Record(context.WithoutCancel(ctx), run)

	if err != nil {
		return nil, err
	}
	stats := map[string]any{
		"total":   result.Total,
		"changed": result.Changed,
		"written": result.Written,
		"failed":  len(result.Failed),
	}
	if len(result.Failed) > 0 {
		titles := make([]string, 0, len(result.Failed))
		for _, f := range result.Failed {
			titles = append(titles, f.Title)
		}
		return stats, fmt.Errorf("%w: could not write %s", jobs.ErrPartial, strings.Join(titles, ", "))
	}

	progressUpdater(100, run.Message)
	return stats, nil
}

// Cleanup does nothing for sort runs.
func (t *SortTask) Cleanup(job *jobs.Job) error {
	return nil
}
