package artwork

import (
	"context"
	"errors"
	"fmt"
	"time"

	"waxwing/src/features/history"
	"waxwing/src/features/jobs"

	"github.com/google/uuid"
)

// CoversTask implements jobs.Task for cover decoration runs.
type CoversTask struct {
	service *Service
	history *history.Service
}

// NewCoversTask creates a new CoversTask.
func NewCoversTask(service *Service, historySvc *history.Service) *CoversTask {
	return &CoversTask{service: service, history: historySvc}
}

// MetadataKeys returns the required metadata keys (none needed).
func (t *CoversTask) MetadataKeys() []string {
	return []string{}
}

// Execute runs the decoration and records the run in history.
func (t *CoversTask) Execute(ctx context.Context, job *jobs.Job, progressUpdater func(int, string)) (map[string]any, error) {
	updateExisting := t.service.config.Get().Artwork.UpdateExisting
	if v, ok := job.Metadata["updateExisting"].(bool); ok {
		updateExisting = v
	}

	run := &history.Run{
		ID:        uuid.NewString(),
		Kind:      "covers",
		StartedAt: time.Now(),
	}

	progress := func(done, total int, status string) {
		if total == 0 {
			progressUpdater(100, status)
			return
		}
		progressUpdater(done*100/total, status)
	}
	onResult := func(r Result) {
		run.Outcomes = append(run.Outcomes, history.Outcome{
			AlbumID:  r.Album.ID,
			Title:    r.Album.Title,
			Artist:   r.Album.Artist,
			Outcome:  r.Outcome,
			Provider: r.Provider,
			Detail:   r.Detail,
		})
	}

	summary, err := t.service.Run(ctx, updateExisting, progress, onResult)

	run.FinishedAt = time.Now()
	if summary != nil {
		run.Total = summary.Total
		run.Changed = summary.Updated
		run.Failed = summary.Failed
	}
	switch {
	case errors.Is(err, context.Canceled):
		run.Status = "cancelled"
		run.Message = "Run cancelled"
	case err != nil && summary == nil:
		run.Status = "failed"
		run.Message = err.Error()
	case summary.Failed > 0:
		run.Status = "partial"
		run.Message = fmt.Sprintf("%d of %d albums failed", summary.Failed, summary.Total)
	default:
		run.Status = "completed"
		run.Message = fmt.Sprintf("Updated %d, skipped %d, no artwork for %d", summary.Updated, summary.Skipped, summary.Missing)
	}
	t.history.Record(context.WithoutCancel(ctx), run)

	if err != nil {
		if errors.Is(err, context.Canceled) || summary == nil {
			return nil, err
		}
		return summaryStats(summary), fmt.Errorf("%w: %s", jobs.ErrPartial, run.Message)
	}

	progressUpdater(100, run.Message)
	return summaryStats(summary), nil
}

func summaryStats(s *Summary) map[string]any {
	return map[string]any{
		"total":   s.Total,
		"updated": s.Updated,
		"skipped": s.Skipped,
		"missing": s.Missing,
		"failed":  s.Failed,
	}
}

// Cleanup does nothing for cover runs.
func (t *CoversTask) Cleanup(job *jobs.Job) error {
	return nil
}
