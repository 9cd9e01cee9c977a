package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/s3-upload-tool/internal/model"
)

type staticSource struct {
	queue model.QueueSnapshot
	stats model.TransferStatistics
}

func (s staticSource) Queue() model.QueueSnapshot                 { return s.queue }
func (s staticSource) UpdateStatistics() model.TransferStatistics { return s.stats }

func TestCollector_ReportsQueueAndStatistics(t *testing.T) {
	c := NewCollector(staticSource{
		queue: model.QueueSnapshot{Active: 2, Limit: 3, Pending: 4, OverallProgress: 37.5, OverallSpeed: 150},
		stats: model.TransferStatistics{
			TotalFiles:       3,
			CompletedFiles:   1,
			FailedFiles:      1,
			TotalBytes:       3000,
			TransferredBytes: 1500,
			AverageSpeed:     150,
			Elapsed:          10 * time.Second,
		},
	})

	expected := `
# HELP s3xfer_active_transfers Transfers currently holding a slot.
# TYPE s3xfer_active_transfers gauge
s3xfer_active_transfers 2
# HELP s3xfer_files Transfers known to the queue by outcome.
# TYPE s3xfer_files gauge
s3xfer_files{outcome="all"} 3
s3xfer_files{outcome="completed"} 1
s3xfer_files{outcome="failed"} 1
# HELP s3xfer_overall_progress_percent Mean progress over unfinished transfers.
# TYPE s3xfer_overall_progress_percent gauge
s3xfer_overall_progress_percent 37.5
# HELP s3xfer_transferred_bytes_total Bytes moved since the statistics were reset.
# TYPE s3xfer_transferred_bytes_total counter
s3xfer_transferred_bytes_total 1500
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"s3xfer_active_transfers",
		"s3xfer_files",
		"s3xfer_overall_progress_percent",
		"s3xfer_transferred_bytes_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 12, testutil.CollectAndCount(c))
}

func TestCollector_Registers(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()

	require.NoError(t, reg.Register(NewCollector(staticSource{})))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 10)
}
