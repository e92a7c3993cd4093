package artwork

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

func TestCoversTask_RecordsFailedRunWhenCatalogUnreadable(t *testing.T) {
	ws := NewMockWorkspace(nil)
	ws.listErr = fmt.Errorf("query: %w", catalog.ErrUnavailable)
	provider := &MockProvider{name: "spotify", enabled: true, art: artworkFor("spotify")}
	repo := &recordingRepo{}
	service := NewService(ws, []Provider{provider}, nil, testManager(false))
	task := NewCoversTask(service, history.NewService(repo))

	job := &jobs.Job{ID: "j1", Type: "update_covers", Metadata: map[string]any{}}
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
	if repo.runs[0].Kind != "covers" {
		t.Errorf("expected run kind covers, got %q", repo.runs[0].Kind)
	}
}
