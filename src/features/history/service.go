package history

import (
	"context"
	"log/slog"
	"time"
)

// Outcome is the per-album result of one run, kept for display.
type Outcome struct {
	AlbumID  string `json:"album_id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Outcome  string `json:"outcome"`
	Provider string `json:"provider,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Run records one sort or covers operation.
type Run struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Total      int       `json:"total"`
	Changed    int       `json:"changed"`
	Failed     int       `json:"failed"`
	Outcomes   []Outcome `json:"outcomes,omitempty"`
}

// Repository is the persistence interface for run history.
type Repository interface {
	SaveRun(ctx context.Context, run *Run) error
	GetRuns(ctx context.Context, limit int) ([]*Run, error)
	GetRun(ctx context.Context, id string) (*Run, error)
}

// Service records and serves run history. A nil repository disables
// persistence without anyone having to check.
type Service struct {
	repo Repository
}

// NewService creates a new history service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record persists a finished run. Failures are logged, never propagated:
// history is telemetry, not part of the operation.
func (s *Service) Record(ctx context.Context, run *Run) {
	if s.repo == nil {
		return
	}
	if err := s.repo.SaveRun(ctx, run); err != nil {
		slog.Error("Failed to record run history", "kind", run.Kind, "error", err)
	}
}

// Recent returns the latest runs, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]*Run, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.GetRuns(ctx, limit)
}

// Get returns one run with its per-album outcomes.
func (s *Service) Get(ctx context.Context, id string) (*Run, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.GetRun(ctx, id)
}
