package historydb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"waxwing/src/features/history"
)

func testStore(t *testing.T) *SqliteStore {
	t.Helper()
	store, err := NewSqliteStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(id string, startedAt time.Time) *history.Run {
	return &history.Run{
		ID:         id,
		Kind:       "sort",
		Status:     "completed",
		Message:    "Sorted 10 albums",
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(30 * time.Second),
		Total:      10,
		Changed:    3,
		Failed:     1,
		Outcomes: []history.Outcome{
			{AlbumID: "p1", Title: "Blue", Artist: "Joni Mitchell", Outcome: "failed", Detail: "boom"},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	run := sampleRun("run-1", time.Now().UTC().Truncate(time.Second))
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	got, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got == nil {
		t.Fatal("expected run to exist")
	}
	if got.Kind != "sort" || got.Total != 10 || got.Changed != 3 || got.Failed != 1 {
		t.Errorf("unexpected run %+v", got)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("expected started_at %v, got %v", run.StartedAt, got.StartedAt)
	}
	if len(got.Outcomes) != 1 || got.Outcomes[0].Title != "Blue" || got.Outcomes[0].Detail != "boom" {
		t.Errorf("unexpected outcomes %+v", got.Outcomes)
	}
}

func TestGetRun_UnknownID(t *testing.T) {
	store := testStore(t)
	got, err := store.GetRun(context.Background(), "nope")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil run, got %+v", got)
	}
}

func TestGetRuns_NewestFirstWithLimit(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 5; i++ {
		run := sampleRun(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}

	runs, err := store.GetRuns(ctx, 3)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].ID != "e" || runs[2].ID != "c" {
		t.Errorf("expected newest first, got %s..%s", runs[0].ID, runs[2].ID)
	}
	if len(runs[0].Outcomes) != 0 {
		t.Error("expected list view without outcomes")
	}
}
