// Package jobstore archives finished documentation jobs to SQLite. Queued
// jobs are deliberately not persisted; the archive exists for reporting
// across restarts, not for recovering scheduler state.
package jobstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hochfrequenz/docsmith/internal/domain"
	"github.com/hochfrequenz/docsmith/internal/scheduler"
)

// Store provides SQLite-backed persistence for finished jobs
type Store struct {
	db *sql.DB
}

// New creates a Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Archive persists one completed record. Re-archiving the same job id
// overwrites the previous row.
func (s *Store) Archive(rec *scheduler.CompletedRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO completed_jobs (id, repo_id, status, reason, priority, created_at, completed_at, execution_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			reason = excluded.reason,
			completed_at = excluded.completed_at,
			execution_ms = excluded.execution_ms
	`,
		rec.Job.ID.String(),
		rec.Job.RepoID,
		string(rec.Job.Status),
		rec.Job.Reason,
		string(rec.Job.Priority),
		rec.Job.CreatedAt,
		rec.CompletedAt,
		rec.ExecutionTime.Milliseconds(),
	)
	return err
}

// ListRecent returns up to limit archived jobs, most recent first
func (s *Store) ListRecent(limit int) ([]*scheduler.CompletedRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, repo_id, status, reason, priority, created_at, completed_at, execution_ms
		FROM completed_jobs
		ORDER BY completed_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*scheduler.CompletedRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Prune deletes archived jobs completed before the cutoff and returns how
// many rows were removed
func (s *Store) Prune(before time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM completed_jobs WHERE completed_at < ?`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanRecord(rows *sql.Rows) (*scheduler.CompletedRecord, error) {
	var rec scheduler.CompletedRecord
	var id, repoID, status, priority string
	var reason sql.NullString
	var execMS int64

	err := rows.Scan(&id, &repoID, &status, &reason, &priority, &rec.Job.CreatedAt, &rec.CompletedAt, &execMS)
	if err != nil {
		return nil, err
	}

	rec.Job.ID = domain.JobID(id)
	rec.Job.RepoID = repoID
	rec.Job.Status = domain.JobStatus(status)
	rec.Job.Priority = domain.Priority(priority)
	if reason.Valid {
		rec.Job.Reason = reason.String
	}
	rec.ExecutionTime = time.Duration(execMS) * time.Millisecond
	return &rec, nil
}
