package sorting

import (
	"context"
	"fmt"
	"testing"

	"waxwing/src/catalog"
	"waxwing/src/features/history"
	"waxwing/src/features/jobs"
)

// recordingRepo captures runs the task writes to history.
type recordingRepo struct {
	runs []*history.Run
}

func (r *recordingRepo) SaveRun(ctx context.Context, run *history.Run) error {
	r.runs = append(r.runs, run)
	return nil
}

func (r *recordingRepo) GetRuns(ctx context.Context, limit int) ([]*history.Run, error) {
	return r.runs, nil
}

func (r *recordingRepo) GetRun(ctx context.Context, id string) (*history.Run, error) {
	return nil, nil
}

func TestSortTask_RecordsFailedRunWhenCatalogUnreadable(t *testing.T) {
	ws := NewMockWorkspace(nil)
	ws.listErr = fmt.Errorf("query: %w", catalog.ErrUnavailable)
	repo := &recordingRepo{}
	task := NewSortTask(NewService(ws, testManager()), history.NewService(repo))

	job := &jobs.Job{ID: "j1", Type: "sort_albums", Metadata: map[string]any{}}
	_, err := task.Execute(context.Background(), job, func(int, string) {})
	if err == nil {
		t.Fatal("expected the task to fail")
	}
	if len(repo.runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(repo.runs))
	}
	if repo.runs[0].Status != "failed" {
		t.Errorf("expected run status failed, got %q", repo.runs[0].Status)
	}
	if repo.runs[0].Kind != "sort" {
		t.Errorf("expected run kind sort, got %q", repo.runs[0].Kind)
	}
}

func TestSortTask_RejectsUnknownKeyMetadata(t *testing.T) {
	ws := NewMockWorkspace(nil)
	task := NewSortTask(NewService(ws, testManager()), history.NewService(nil))

	job := &jobs.Job{ID: "j2", Type: "sort_albums", Metadata: map[string]any{"key": "tempo"}}
	_, err := task.Execute(context.Background(), job, func(int, string) {})
	if err == nil {
		t.Fatal("expected an error for an unknown sort key")
	}
}
