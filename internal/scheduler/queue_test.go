package scheduler

import (
	"testing"

	"github.com/hochfrequenz/docsmith/internal/domain"
)

func TestQueue_FIFOWithinPriority(t *testing.T) {
	q := NewQueue(0)

	a := domain.NewJob("repo-a", domain.PriorityNormal)
	b := domain.NewJob("repo-b", domain.PriorityNormal)
	c := domain.NewJob("repo-c", domain.PriorityNormal)
	q.Submit(a)
	q.Submit(b)
	q.Submit(c)

	for _, want := range []*domain.Job{a, b, c} {
		got, ok := q.PopNext()
		if !ok {
			t.Fatal("queue unexpectedly empty")
		}
		if got.ID != want.ID {
			t.Errorf("got %s, want %s", got.RepoID, want.RepoID)
		}
	}

	if _, ok := q.PopNext(); ok {
		t.Error("queue should be empty")
	}
}

func TestQueue_PriorityPrecedence(t *testing.T) {
	q := NewQueue(0)

	low := domain.NewJob("low", domain.PriorityLow)
	normal := domain.NewJob("normal", domain.PriorityNormal)
	high := domain.NewJob("high", domain.PriorityHigh)
	q.Submit(low)
	q.Submit(normal)
	q.Submit(high)

	order := []string{}
	for {
		job, ok := q.PopNext()
		if !ok {
			break
		}
		order = append(order, job.RepoID)
	}

	want := []string{"high", "normal", "low"}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, order[i], want[i])
		}
	}
}

func TestQueue_RemovePreservesOrder(t *testing.T) {
	q := NewQueue(0)

	a := domain.NewJob("a", domain.PriorityNormal)
	b := domain.NewJob("b", domain.PriorityNormal)
	c := domain.NewJob("c", domain.PriorityNormal)
	q.Submit(a)
	q.Submit(b)
	q.Submit(c)

	removed, ok := q.Remove(b.ID)
	if !ok {
		t.Fatal("remove of queued job should succeed")
	}
	if removed.ID != b.ID {
		t.Errorf("got %s, want %s", removed.RepoID, b.RepoID)
	}

	first, _ := q.PopNext()
	second, _ := q.PopNext()
	if first.ID != a.ID || second.ID != c.ID {
		t.Errorf("got order %s, %s, want a, c", first.RepoID, second.RepoID)
	}
}

func TestQueue_RemoveUnknown(t *testing.T) {
	q := NewQueue(0)
	if _, ok := q.Remove(domain.NewJobID()); ok {
		t.Error("remove of unknown id should fail")
	}
}

func TestQueue_CanAccept(t *testing.T) {
	q := NewQueue(2)

	if !q.CanAccept() {
		t.Error("empty queue should accept")
	}

	q.Submit(domain.NewJob("a", domain.PriorityNormal))
	q.Submit(domain.NewJob("b", domain.PriorityNormal))

	if q.CanAccept() {
		t.Error("full queue should not accept")
	}

	// Capacity is advisory: Submit still works past it.
	q.Submit(domain.NewJob("c", domain.PriorityNormal))
	if q.Len() != 3 {
		t.Errorf("got len %d, want 3", q.Len())
	}
}

func TestQueue_Drain(t *testing.T) {
	q := NewQueue(0)
	q.Submit(domain.NewJob("a", domain.PriorityLow))
	q.Submit(domain.NewJob("b", domain.PriorityHigh))

	drained := q.Drain()
	if len(drained) != 2 {
		t.Fatalf("got %d drained jobs, want 2", len(drained))
	}
	if drained[0].RepoID != "b" {
		t.Errorf("drain should return dispatch order, got %s first", drained[0].RepoID)
	}
	if q.Len() != 0 {
		t.Errorf("got len %d after drain, want 0", q.Len())
	}
}
