package jobstore

const schema = `
CREATE TABLE IF NOT EXISTS completed_jobs (
    id TEXT PRIMARY KEY,
    repo_id TEXT NOT NULL,
    status TEXT NOT NULL,
    reason TEXT,
    priority TEXT,
    created_at TIMESTAMP NOT NULL,
    completed_at TIMESTAMP NOT NULL,
    execution_ms INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_completed_jobs_repo ON completed_jobs(repo_id);
CREATE INDEX IF NOT EXISTS idx_completed_jobs_completed_at ON completed_jobs(completed_at);
`
