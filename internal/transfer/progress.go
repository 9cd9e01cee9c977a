package transfer

import (
	"math"
	"time"

	"github.com/ytget/s3-upload-tool/internal/model"
)

// speedWindow is the number of samples, start point included, that the
// rolling speed is computed over.
const speedWindow = 5

type speedSample struct {
	at    time.Time
	bytes int64
}

// speedTracker keeps the recent byte samples of running tasks.
type speedTracker struct {
	samples map[string][]speedSample
}

func newSpeedTracker() *speedTracker {
	return &speedTracker{samples: make(map[string][]speedSample)}
}

// reset starts a new window at the attempt's start point.
func (st *speedTracker) reset(id string, at time.Time, bytes int64) {
	st.samples[id] = []speedSample{{at: at, bytes: bytes}}
}

func (st *speedTracker) drop(id string) {
	delete(st.samples, id)
}

// sample adds a point and returns bytes per second across the window. ok is
// false when the window spans no time yet.
func (st *speedTracker) sample(id string, at time.Time, bytes int64) (speed float64, ok bool) {
	window := append(st.samples[id], speedSample{at: at, bytes: bytes})
	if len(window) > speedWindow {
		window = window[len(window)-speedWindow:]
	}
	st.samples[id] = window

	first, last := window[0], window[len(window)-1]
	elapsed := last.at.Sub(first.at).Seconds()
	if elapsed <= 0 {
		return 0, false
	}
	delta := last.bytes - first.bytes
	if delta < 0 {
		delta = 0
	}
	return float64(delta) / elapsed, true
}

func (s *Service) onProgress(m progressMsg) {
	t := s.current(m.id, m.attempt)
	if t == nil {
		return
	}

	total := t.TotalBytes
	if m.total > 0 {
		total = m.total
	}
	percent := t.Progress
	if total > 0 {
		percent = float64(m.transferred) / float64(total) * 100
	}
	s.applyProgress(t, percent, m.transferred, total)
}

// applyProgress stores a progress sample unless it would move the task
// backwards. Percent is only compared while the total is unchanged, since a
// newly learned total legitimately rescales it.
func (s *Service) applyProgress(t *model.TransferTask, percent float64, transferred, total int64) {
	percent = clampPercent(percent)
	if transferred < t.TransferredBytes {
		return
	}
	if total == t.TotalBytes && percent < t.Progress {
		return
	}

	speed, ok := s.speed.sample(t.ID, s.clock.Now(), transferred)
	if !ok {
		speed = t.Speed
	}

	s.registry.update(t.ID, func(t *model.TransferTask) {
		t.Progress = percent
		t.TransferredBytes = transferred
		t.TotalBytes = total
		t.Speed = speed
		t.ETASec = estimateETA(total-transferred, speed)
	})
	s.notify(t)
}

// CalculateOverallProgress returns transferred over total bytes across all
// tasks as a percentage, 0 when no total is known.
func (s *Service) CalculateOverallProgress() float64 {
	var transferred, total int64
	s.registry.each(func(t *model.TransferTask) {
		transferred += t.TransferredBytes
		total += t.TotalBytes
	})
	return overallPercent(transferred, total)
}

// Queue returns the aggregate view of the queue.
func (s *Service) Queue() model.QueueSnapshot {
	snap := model.QueueSnapshot{
		Active: int(s.active.Load()),
		Limit:  int(s.limit.Load()),
	}
	var transferred, total int64
	s.registry.each(func(t *model.TransferTask) {
		transferred += t.TransferredBytes
		total += t.TotalBytes
		switch t.Status {
		case model.TaskStatusPending:
			snap.Pending++
		case model.TaskStatusInProgress:
			snap.OverallSpeed += t.Speed
		case model.TaskStatusPaused, model.TaskStatusCompleted,
			model.TaskStatusFailed, model.TaskStatusCancelled:
		}
	})
	snap.OverallProgress = overallPercent(transferred, total)
	return snap
}

func overallPercent(transferred, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(transferred) / float64(total) * 100
}

func estimateETA(remaining int64, speed float64) int {
	if speed <= 0 || remaining < 0 {
		return -1
	}
	return int(math.Ceil(float64(remaining) / speed))
}

func clampPercent(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
