package tui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hochfrequenz/docsmith/internal/scheduler"
)

// HTTPProvider fetches dashboard data from a running docsmith server
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider creates a provider against the given server base URL
func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Fetch retrieves stats, running jobs, and recent jobs
func (p *HTTPProvider) Fetch() (Snapshot, error) {
	var snap Snapshot

	var stats scheduler.Stats
	if err := p.get("/api/stats", &stats); err != nil {
		return snap, err
	}
	snap.Stats = stats

	if err := p.get("/api/jobs/running", &snap.Running); err != nil {
		return snap, err
	}
	if err := p.get("/api/jobs/recent?limit=10", &snap.Recent); err != nil {
		return snap, err
	}
	return snap, nil
}

func (p *HTTPProvider) get(path string, out interface{}) error {
	resp, err := p.client.Get(p.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
