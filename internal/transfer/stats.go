package transfer

import (
	"sync"
	"time"

	"github.com/ytget/s3-upload-tool/internal/model"
)

// statsCollector holds the last computed statistics and the reset point.
// baseBytes is the transferred byte count at the reset.
type statsCollector struct {
	mu        sync.Mutex
	snapshot  model.TransferStatistics
	resetAt   time.Time
	baseBytes int64
}

// UpdateStatistics rescans the registry and stores the result. Average
// speed is the bytes moved since the last reset over the time since the
// first task started, or since the reset if that is later.
func (s *Service) UpdateStatistics() model.TransferStatistics {
	now := s.clock.Now()

	var st model.TransferStatistics
	var firstStart time.Time
	s.registry.each(func(t *model.TransferTask) {
		st.TotalFiles++
		switch t.Status {
		case model.TaskStatusCompleted:
			st.CompletedFiles++
		case model.TaskStatusFailed:
			st.FailedFiles++
		case model.TaskStatusPending, model.TaskStatusInProgress,
			model.TaskStatusPaused, model.TaskStatusCancelled:
		}
		st.TotalBytes += t.TotalBytes
		st.TransferredBytes += t.TransferredBytes
		if !t.StartedAt.IsZero() && (firstStart.IsZero() || t.StartedAt.Before(firstStart)) {
			firstStart = t.StartedAt
		}
	})

	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()

	if !firstStart.IsZero() {
		origin := firstStart
		if s.stats.resetAt.After(origin) {
			origin = s.stats.resetAt
		}
		moved := st.TransferredBytes - s.stats.baseBytes
		if moved < 0 {
			// Removed or restarted tasks took bytes out of the sum.
			moved = 0
		}
		if elapsed := now.Sub(origin); elapsed > 0 {
			st.Elapsed = elapsed
			st.AverageSpeed = float64(moved) / elapsed.Seconds()
		}
	}
	s.stats.snapshot = st
	return st
}

// Statistics returns the result of the last UpdateStatistics.
func (s *Service) Statistics() model.TransferStatistics {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()
	return s.stats.snapshot
}

// ResetStatistics zeroes the counters without touching any task. Bytes
// already transferred no longer count towards the average speed.
func (s *Service) ResetStatistics() {
	now := s.clock.Now()
	var transferred int64
	s.registry.each(func(t *model.TransferTask) {
		transferred += t.TransferredBytes
	})

	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()
	s.stats.snapshot = model.TransferStatistics{}
	s.stats.resetAt = now
	s.stats.baseBytes = transferred
}
