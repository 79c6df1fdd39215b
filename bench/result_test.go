package bench

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReport(t *testing.T) {
	r := NewReport()
	assert.NotEmpty(t, r.RunID)
	assert.False(t, r.StartedAt.IsZero())
	assert.Empty(t, r.Results)
}

func TestWriteJSON(t *testing.T) {
	r := NewReport()
	r.Results = append(r.Results, Result{
		Strategy:    "direct-sql",
		Size:        100,
		NodeSeconds: 0.5,
		EdgeSeconds: 0.25,
		NodesPerSec: 200,
		EdgesPerSec: 396,
		Verified:    true,
	})

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, r.WriteJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, r.RunID, got.RunID)
	require.Len(t, got.Results, 1)
	assert.Equal(t, r.Results[0], got.Results[0])
}

func TestResultErrorOmittedWhenEmpty(t *testing.T) {
	data, err := json.Marshal(Result{Strategy: "unwind-merge", Verified: true})
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"error"`)
}
