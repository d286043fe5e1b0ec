package scheduler

import (
	"testing"

	"github.com/hochfrequenz/docsmith/internal/domain"
)

func TestRegistry_InsertRemove(t *testing.T) {
	r := NewRegistry()

	job := domain.NewJob("repo", domain.PriorityNormal)
	rec := newRunningRecord(job, nil)
	r.Insert(rec)

	if r.Count() != 1 {
		t.Errorf("got count %d, want 1", r.Count())
	}
	if _, ok := r.Get(job.ID); !ok {
		t.Error("inserted record should be found")
	}

	got, ok := r.Remove(job.ID)
	if !ok {
		t.Fatal("remove of running job should succeed")
	}
	if got.Job.ID != job.ID {
		t.Errorf("got job %s, want %s", got.Job.ID, job.ID)
	}
	if r.Count() != 0 {
		t.Errorf("got count %d, want 0", r.Count())
	}

	if _, ok := r.Remove(job.ID); ok {
		t.Error("second remove should fail")
	}
}

func TestRegistry_IDs(t *testing.T) {
	r := NewRegistry()

	a := domain.NewJob("a", domain.PriorityNormal)
	b := domain.NewJob("b", domain.PriorityNormal)
	r.Insert(newRunningRecord(a, nil))
	r.Insert(newRunningRecord(b, nil))

	ids := r.IDs()
	if len(ids) != 2 {
		t.Fatalf("got %d ids, want 2", len(ids))
	}
	seen := map[domain.JobID]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen[a.ID] || !seen[b.ID] {
		t.Error("IDs should contain both running jobs")
	}
}

func TestRunningRecord_ReleaseOnce(t *testing.T) {
	released := 0
	rec := newRunningRecord(domain.NewJob("repo", domain.PriorityNormal), func() {
		released++
	})

	rec.releasePermit()
	rec.releasePermit()
	rec.releasePermit()

	if released != 1 {
		t.Errorf("permit released %d times, want exactly 1", released)
	}
}

func TestRunningRecord_NilRelease(t *testing.T) {
	rec := newRunningRecord(domain.NewJob("repo", domain.PriorityNormal), nil)
	// Should not panic.
	rec.releasePermit()
}
