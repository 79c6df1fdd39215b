package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Result is the measurement of one strategy at one batch size.
type Result struct {
	Strategy    string  `json:"strategy"`
	Size        int     `json:"size"`
	NodeSeconds float64 `json:"node_seconds"`
	EdgeSeconds float64 `json:"edge_seconds"`
	NodesPerSec float64 `json:"nodes_per_sec"`
	EdgesPerSec float64 `json:"edges_per_sec"`
	Verified    bool    `json:"verified"`
	Error       string  `json:"error,omitempty"`
}

// Report is a full benchmark run.
type Report struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Results   []Result  `json:"results"`
}

// NewReport creates an empty report stamped with a fresh run id.
func NewReport() *Report {
	return &Report{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
}

// WriteJSON serializes the report to path.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
