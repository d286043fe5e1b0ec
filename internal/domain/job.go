package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobID uniquely identifies a documentation job. Assigned at submission,
// immutable afterwards.
type JobID string

// NewJobID generates a fresh random JobID
func NewJobID() JobID {
	return JobID(uuid.NewString())
}

func (id JobID) String() string { return string(id) }

// Job is one unit of schedulable work: generate documentation for one repository.
// A job lives in exactly one of the scheduler's containers (queue, running
// registry, history) at any instant.
type Job struct {
	ID        JobID
	RepoID    string
	Priority  Priority
	Status    JobStatus
	Reason    string // failure reason, set when Status == JobFailed
	CreatedAt time.Time
}

// NewJob creates a queued job for the given repository
func NewJob(repoID string, priority Priority) *Job {
	return &Job{
		ID:        NewJobID(),
		RepoID:    repoID,
		Priority:  priority,
		Status:    JobQueued,
		CreatedAt: time.Now(),
	}
}

// Outcome is the result a driver reports when a running job finishes
type Outcome struct {
	Status JobStatus
	Reason string
}

// Success is the outcome of a job whose work finished normally
func Success() Outcome {
	return Outcome{Status: JobCompleted}
}

// Failed is the outcome of a job whose work errored
func Failed(reason string) Outcome {
	return Outcome{Status: JobFailed, Reason: reason}
}

// Cancelled is the outcome of a job cancelled while running
func Cancelled() Outcome {
	return Outcome{Status: JobCancelled}
}

// Repository describes a documentation target
type Repository struct {
	ID     string `toml:"id"`
	URL    string `toml:"url"`
	Branch string `toml:"branch"`
}
