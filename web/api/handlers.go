package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hochfrequenz/docsmith/internal/domain"
	"github.com/hochfrequenz/docsmith/internal/scheduler"
)

// SubmitRequest is the body of POST /api/jobs
type SubmitRequest struct {
	RepoID   string `json:"repo_id"`
	Priority string `json:"priority,omitempty"`
}

// SubmitResponse is the reply to a successful submission
type SubmitResponse struct {
	JobID string `json:"job_id"`
}

// JobResponse describes one job
type JobResponse struct {
	ID            string `json:"id"`
	RepoID        string `json:"repo_id,omitempty"`
	Status        string `json:"status"`
	Reason        string `json:"reason,omitempty"`
	ExecutionTime string `json:"execution_time,omitempty"`
	CompletedAt   string `json:"completed_at,omitempty"`
}

// handleStats serves GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.sched.Stats())
}

// handleJobs serves POST /api/jobs. This is the edge where queue capacity is
// enforced: the scheduler itself always accepts.
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	if req.RepoID == "" {
		writeError(w, http.StatusBadRequest, "repo_id is required")
		return
	}

	if !s.sched.CanAccept() {
		writeError(w, http.StatusTooManyRequests, "queue is full")
		return
	}

	job := domain.NewJob(req.RepoID, domain.Priority(req.Priority))
	if err := s.sched.Submit(job); err != nil {
		writeError(w, http.StatusInternalServerError, "submit failed: %v", err)
		return
	}
	writeJSON(w, http.StatusAccepted, SubmitResponse{JobID: job.ID.String()})
}

// handleJob serves GET and DELETE /api/jobs/{id}
func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		status, ok := s.sched.Status(domain.JobID(id))
		if !ok {
			writeError(w, http.StatusNotFound, "job %s not found", id)
			return
		}
		writeJSON(w, http.StatusOK, JobResponse{ID: id, Status: string(status)})

	case http.MethodDelete:
		err := s.sched.Cancel(domain.JobID(id))
		if errors.Is(err, scheduler.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job %s not found", id)
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "cancel failed: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, JobResponse{ID: id, Status: string(domain.JobCancelled)})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleRunning serves GET /api/jobs/running
func (s *Server) handleRunning(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	recs := s.sched.RunningRecords()
	jobs := make([]JobResponse, 0, len(recs))
	for _, rec := range recs {
		jobs = append(jobs, JobResponse{
			ID:     rec.Job.ID.String(),
			RepoID: rec.Job.RepoID,
			Status: string(domain.JobRunning),
		})
	}
	writeJSON(w, http.StatusOK, jobs)
}

// handleRecent serves GET /api/jobs/recent?limit=N
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit %q", raw)
			return
		}
		limit = n
	}

	records := s.sched.Recent(limit)
	jobs := make([]JobResponse, 0, len(records))
	for _, rec := range records {
		jobs = append(jobs, JobResponse{
			ID:            rec.Job.ID.String(),
			RepoID:        rec.Job.RepoID,
			Status:        string(rec.Job.Status),
			Reason:        rec.Job.Reason,
			ExecutionTime: rec.ExecutionTime.String(),
			CompletedAt:   rec.CompletedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, jobs)
}
