package scheduler

import (
	"sync"
	"time"

	"github.com/hochfrequenz/docsmith/internal/domain"
)

// RunningRecord tracks one in-flight job. The admission permit the job holds
// is bound to the record: releasePermit fires exactly once, when the record is
// finalized, regardless of which path (complete, cancel, shutdown) gets there
// first.
type RunningRecord struct {
	Job       *domain.Job
	StartedAt time.Time

	releaseOnce sync.Once
	release     func()
}

// newRunningRecord binds a job to its held permit
func newRunningRecord(job *domain.Job, release func()) *RunningRecord {
	return &RunningRecord{
		Job:       job,
		StartedAt: time.Now(),
		release:   release,
	}
}

// releasePermit returns the held permit. Idempotent.
func (r *RunningRecord) releasePermit() {
	r.releaseOnce.Do(func() {
		if r.release != nil {
			r.release()
		}
	})
}

// Registry tracks currently running jobs. It has its own lock, independent of
// the queue's, so status queries are not serialized behind queue churn.
type Registry struct {
	mu      sync.RWMutex
	records map[domain.JobID]*RunningRecord
}

// NewRegistry creates an empty running registry
func NewRegistry() *Registry {
	return &Registry{records: make(map[domain.JobID]*RunningRecord)}
}

// Insert adds a record for a job that just acquired a permit
func (r *Registry) Insert(rec *RunningRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.Job.ID] = rec
}

// Remove takes a record out of the registry. Returns false if the id is not
// running.
func (r *Registry) Remove(id domain.JobID) (*RunningRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, false
	}
	delete(r.records, id)
	return rec, true
}

// Get returns the record for a running job
func (r *Registry) Get(id domain.JobID) (*RunningRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	return rec, ok
}

// IDs returns the ids of all running jobs
func (r *Registry) IDs() []domain.JobID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]domain.JobID, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	return ids
}

// Snapshot returns all current records
func (r *Registry) Snapshot() []*RunningRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := make([]*RunningRecord, 0, len(r.records))
	for _, rec := range r.records {
		recs = append(recs, rec)
	}
	return recs
}

// Count returns the number of running jobs
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
