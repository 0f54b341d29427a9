package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderCounts(t *testing.T) {
	r := NewPrometheusRecorder()
	r.Observe(context.Background(), "merge", true, 3*time.Millisecond)
	r.Observe(context.Background(), "merge", false, time.Millisecond)
	r.Observe(context.Background(), "", true, time.Millisecond)
	r.AddRows("merge", 12)
	r.AddRows("merge", 0)

	families, err := r.Registry().Gather()
	require.NoError(t, err)
	got := map[string]int{}
	for _, mf := range families {
		got[mf.GetName()] = len(mf.GetMetric())
		if mf.GetName() == "isoplot_rows_processed_total" {
			assert.InDelta(t, 12, mf.GetMetric()[0].GetCounter().GetValue(), 1e-9)
		}
	}
	assert.Equal(t, 2, got["isoplot_stage_duration_seconds"], "one series per outcome")
	assert.Equal(t, 1, got["isoplot_rows_processed_total"])
}

func TestWriteTextfile(t *testing.T) {
	r := NewPrometheusRecorder()
	r.Observe(context.Background(), "aggregate", true, time.Millisecond)
	r.AddRows("aggregate", 4)

	p := filepath.Join(t.TempDir(), "isoplot.prom")
	require.NoError(t, r.WriteTextfile(p))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	text := string(b)
	assert.Contains(t, text, `isoplot_rows_processed_total{stage="aggregate"} 4`)
	assert.Contains(t, text, "isoplot_stage_duration_seconds_bucket")
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.Observe(context.Background(), "merge", true, time.Second)
	r.AddRows("merge", 1)
}
