package scheduler

import (
	"sync"
	"time"

	"github.com/hochfrequenz/docsmith/internal/domain"
)

// CompletedRecord is the retained trace of one finished job
type CompletedRecord struct {
	Job           domain.Job
	ExecutionTime time.Duration
	CompletedAt   time.Time
}

// History keeps a bounded trailing record of finished jobs plus the counters
// derived from them. Once maxRecords is exceeded the oldest record is evicted;
// counters are never rolled back by eviction.
type History struct {
	mu         sync.RWMutex
	records    []*CompletedRecord
	maxRecords int

	completed int
	failed    int
	cancelled int
	totalExec time.Duration
}

// NewHistory creates a history retaining at most maxRecords records
func NewHistory(maxRecords int) *History {
	if maxRecords < 1 {
		maxRecords = 1
	}
	return &History{maxRecords: maxRecords}
}

// Record appends a finished job and updates the outcome counters
func (h *History) Record(job domain.Job, execTime time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append(h.records, &CompletedRecord{
		Job:           job,
		ExecutionTime: execTime,
		CompletedAt:   time.Now(),
	})
	if len(h.records) > h.maxRecords {
		// Evict oldest first. Copy down so the backing array does not pin
		// evicted records.
		n := copy(h.records, h.records[1:])
		h.records[n] = nil
		h.records = h.records[:n]
	}

	switch job.Status {
	case domain.JobCompleted:
		h.completed++
	case domain.JobFailed:
		h.failed++
	case domain.JobCancelled:
		h.cancelled++
	}
	h.totalExec += execTime
}

// Recent returns up to limit records, most recent first. limit <= 0 returns
// everything retained.
func (h *History) Recent(limit int) []*CompletedRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := len(h.records)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]*CompletedRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, h.records[i])
	}
	return out
}

// StatusOf returns the final status of an archived job
func (h *History) StatusOf(id domain.JobID) (domain.JobStatus, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := len(h.records) - 1; i >= 0; i-- {
		if h.records[i].Job.ID == id {
			return h.records[i].Job.Status, true
		}
	}
	return "", false
}

// Len returns the number of retained records
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// CleanupOlderThan removes records whose completion predates the cutoff and
// returns how many were removed
func (h *History) CleanupOlderThan(maxAge time.Duration) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	// Records are append-ordered, so everything to remove is a prefix.
	i := 0
	for i < len(h.records) && h.records[i].CompletedAt.Before(cutoff) {
		i++
	}
	if i == 0 {
		return 0
	}
	n := copy(h.records, h.records[i:])
	for j := n; j < len(h.records); j++ {
		h.records[j] = nil
	}
	h.records = h.records[:n]
	return i
}

// Counters is a snapshot of the outcome tallies
type Counters struct {
	Completed int
	Failed    int
	Cancelled int
	TotalExec time.Duration
}

// Counters returns the current outcome tallies
func (h *History) Counters() Counters {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Counters{
		Completed: h.completed,
		Failed:    h.failed,
		Cancelled: h.cancelled,
		TotalExec: h.totalExec,
	}
}
