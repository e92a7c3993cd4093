package jobs

import (
	"strings"
	"testing"
)

func TestRunStats_FixedOrder(t *testing.T) {
	job := &Job{Metadata: map[string]any{
		"failed":  2,
		"total":   10,
		"written": 7,
		"changed": 8,
		"msg":     "ignored",
	}}
	got := runStats(job)
	want := "total 10, changed 8, written 7, failed 2"
	if got != want {
		t.Errorf("runStats = %q, want %q", got, want)
	}
}

func TestRunStats_EmptyWithoutCounters(t *testing.T) {
	if got := runStats(&Job{Metadata: map[string]any{"key": "position"}}); got != "" {
		t.Errorf("expected no stats for a job without counters, got %q", got)
	}
}

func TestStatusEmoji_CoversAllStatuses(t *testing.T) {
	seen := map[string]bool{}
	for _, status := range []JobStatus{JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed, JobStatusCancelled} {
		e := statusEmoji(status)
		if e == "❓" {
			t.Errorf("no emoji for status %q", status)
		}
		if seen[e] {
			t.Errorf("emoji %q reused for status %q", e, status)
		}
		seen[e] = true
	}
	if e := statusEmoji(JobStatus("bogus")); !strings.Contains(e, "❓") {
		t.Errorf("unknown status should render the fallback emoji, got %q", e)
	}
}
