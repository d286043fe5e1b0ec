// Package scheduler implements the job scheduler at the heart of docsmith:
// a priority queue of pending jobs, a counting permit pool bounding concurrent
// execution, a registry of in-flight jobs, and a bounded history of finished
// ones. The scheduler runs nothing itself; an external driver (see
// internal/pipeline) pops, starts, and completes jobs around the actual work.
package scheduler

import (
	"container/heap"
	"sync"

	"github.com/hochfrequenz/docsmith/internal/domain"
)

// entry is a queued job plus its ordering key. rank comes from the job's
// priority, seq is the submission sequence number used as the tie-break so
// equal-priority jobs dispatch strictly FIFO.
type entry struct {
	job   *domain.Job
	rank  int
	seq   uint64
	index int // heap position, maintained by jobHeap
}

// jobHeap implements heap.Interface over queue entries
type jobHeap []*entry

func (h jobHeap) Len() int { return len(h) }

func (h jobHeap) Less(i, j int) bool {
	if h[i].rank != h[j].rank {
		return h[i].rank < h[j].rank
	}
	return h[i].seq < h[j].seq
}

func (h jobHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

// Push adds an entry. Called by heap.Push — do not call directly.
func (h *jobHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

// Pop removes and returns the best entry. Called by heap.Pop — do not call directly.
func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil // avoid memory leak
	e.index = -1
	*h = old[:n-1]
	return e
}

// Queue is the priority-ordered holding area for jobs that have been submitted
// but not yet started. Higher priority pops first; within one tier, submission
// order. Submit never blocks and never rejects: capacity is advisory, callers
// gate on CanAccept before submitting.
type Queue struct {
	mu      sync.Mutex
	heap    jobHeap
	byID    map[domain.JobID]*entry
	seq     uint64
	maxSize int
}

// NewQueue creates a queue with the given advisory capacity. maxSize <= 0
// means unbounded.
func NewQueue(maxSize int) *Queue {
	q := &Queue{
		byID:    make(map[domain.JobID]*entry),
		maxSize: maxSize,
	}
	heap.Init(&q.heap)
	return q
}

// Submit enqueues a job. O(log n), never blocks.
func (q *Queue) Submit(job *domain.Job) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.seq++
	e := &entry{
		job:  job,
		rank: job.Priority.Rank(),
		seq:  q.seq,
	}
	heap.Push(&q.heap, e)
	q.byID[job.ID] = e
}

// PopNext removes and returns the highest-priority, earliest-submitted job.
// Returns false if the queue is empty. Non-blocking.
func (q *Queue) PopNext() (*domain.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.heap.Len() == 0 {
		return nil, false
	}
	e := heap.Pop(&q.heap).(*entry)
	delete(q.byID, e.job.ID)
	return e.job, true
}

// Remove takes a specific queued job out of the queue without disturbing the
// relative order of the rest. Returns false if the id is not queued.
func (q *Queue) Remove(id domain.JobID) (*domain.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.byID[id]
	if !ok {
		return nil, false
	}
	heap.Remove(&q.heap, e.index)
	delete(q.byID, id)
	return e.job, true
}

// Contains reports whether the job is currently queued
func (q *Queue) Contains(id domain.JobID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.byID[id]
	return ok
}

// Len returns the number of queued jobs
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.heap.Len()
}

// CanAccept reports whether the queue is below its advisory capacity
func (q *Queue) CanAccept() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.maxSize <= 0 || q.heap.Len() < q.maxSize
}

// Drain empties the queue and returns the removed jobs in dispatch order
func (q *Queue) Drain() []*domain.Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	drained := make([]*domain.Job, 0, q.heap.Len())
	for q.heap.Len() > 0 {
		e := heap.Pop(&q.heap).(*entry)
		delete(q.byID, e.job.ID)
		drained = append(drained, e.job)
	}
	return drained
}
