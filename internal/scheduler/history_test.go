package scheduler

import (
	"testing"
	"time"

	"github.com/hochfrequenz/docsmith/internal/domain"
)

func finishedJob(repoID string, status domain.JobStatus) domain.Job {
	job := domain.NewJob(repoID, domain.PriorityNormal)
	job.Status = status
	return *job
}

func TestHistory_EvictsOldest(t *testing.T) {
	h := NewHistory(3)

	first := finishedJob("first", domain.JobCompleted)
	h.Record(first, time.Millisecond)
	for i := 0; i < 3; i++ {
		h.Record(finishedJob("later", domain.JobCompleted), time.Millisecond)
	}

	if h.Len() != 3 {
		t.Errorf("got len %d, want 3", h.Len())
	}
	if _, ok := h.StatusOf(first.ID); ok {
		t.Error("oldest record should have been evicted")
	}

	// Counters survive eviction.
	if got := h.Counters().Completed; got != 4 {
		t.Errorf("got completed=%d, want 4", got)
	}
}

func TestHistory_RecentMostRecentFirst(t *testing.T) {
	h := NewHistory(10)

	a := finishedJob("a", domain.JobCompleted)
	b := finishedJob("b", domain.JobFailed)
	c := finishedJob("c", domain.JobCompleted)
	h.Record(a, 0)
	h.Record(b, 0)
	h.Record(c, 0)

	recent := h.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("got %d records, want 2", len(recent))
	}
	if recent[0].Job.ID != c.ID || recent[1].Job.ID != b.ID {
		t.Error("recent should be most-recent-first")
	}

	all := h.Recent(0)
	if len(all) != 3 {
		t.Errorf("got %d records for limit 0, want 3", len(all))
	}
}

func TestHistory_AverageAndSuccessRate(t *testing.T) {
	h := NewHistory(10)

	h.Record(finishedJob("a", domain.JobCompleted), 100*time.Millisecond)
	h.Record(finishedJob("b", domain.JobCompleted), 200*time.Millisecond)
	h.Record(finishedJob("c", domain.JobCompleted), 300*time.Millisecond)

	c := h.Counters()
	finished := c.Completed + c.Failed + c.Cancelled
	if finished != 3 {
		t.Fatalf("got %d finished, want 3", finished)
	}

	avg := c.TotalExec / time.Duration(finished)
	if avg != 200*time.Millisecond {
		t.Errorf("got avg %v, want 200ms", avg)
	}

	rate := float64(c.Completed) / float64(finished) * 100
	if rate != 100.0 {
		t.Errorf("got success rate %.1f, want 100.0", rate)
	}
}

func TestHistory_OutcomeCounters(t *testing.T) {
	h := NewHistory(10)

	h.Record(finishedJob("a", domain.JobCompleted), 0)
	h.Record(finishedJob("b", domain.JobFailed), 0)
	h.Record(finishedJob("c", domain.JobFailed), 0)
	h.Record(finishedJob("d", domain.JobCancelled), 0)

	c := h.Counters()
	if c.Completed != 1 || c.Failed != 2 || c.Cancelled != 1 {
		t.Errorf("got completed=%d failed=%d cancelled=%d, want 1/2/1",
			c.Completed, c.Failed, c.Cancelled)
	}
}

func TestHistory_CleanupOlderThan(t *testing.T) {
	h := NewHistory(10)

	h.Record(finishedJob("old", domain.JobCompleted), 0)
	// Backdate the record past the cutoff.
	h.records[0].CompletedAt = time.Now().Add(-2 * time.Hour)
	h.Record(finishedJob("fresh", domain.JobCompleted), 0)

	removed := h.CleanupOlderThan(time.Hour)
	if removed != 1 {
		t.Errorf("got removed=%d, want 1", removed)
	}
	if h.Len() != 1 {
		t.Errorf("got len %d, want 1", h.Len())
	}
	if h.Recent(1)[0].Job.RepoID != "fresh" {
		t.Error("fresh record should survive cleanup")
	}

	if h.CleanupOlderThan(time.Hour) != 0 {
		t.Error("second cleanup should remove nothing")
	}
}
