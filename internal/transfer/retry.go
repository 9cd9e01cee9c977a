package transfer

import (
	"time"

	"github.com/ytget/s3-upload-tool/internal/model"
)

// maxRetryBackoff caps the delay before an automatic retry.
const maxRetryBackoff = time.Minute

// retry restarts a failed task. It only looks at the retry count, never at
// the kind of failure. With auto set the call comes from the backoff timer
// and is rescheduled instead of dropped when no slot is free.
func (s *Service) retry(id string, auto bool) {
	if auto {
		delete(s.retryTimers, id)
	} else {
		s.stopRetryTimer(id)
	}

	t := s.registry.get(id)
	if t == nil || t.Status != model.TaskStatusFailed {
		return
	}
	if t.RetryCount >= t.MaxRetries {
		s.logger.Debug("transfer: retry limit reached", "task_id", id, "retries", t.RetryCount)
		return
	}
	if _, busy := s.probing[id]; busy {
		return
	}
	if !s.hasFreeSlot() {
		s.logger.Debug("transfer: retry rejected, no free slot", "task_id", id, "kind", model.ErrorKindConcurrencyRejection)
		if auto {
			s.scheduleRetry(id, t.RetryCount)
		}
		return
	}

	if s.canContinueParts(t) {
		if s.needsIdentityCheck(t) {
			s.beginProbe(t, launchRetry)
			return
		}
		s.reserve()
		s.launch(t, launchRetry, "")
		return
	}

	// Full restart.
	stale := ""
	if t.Multipart != nil {
		stale = t.Multipart.SessionID
	}
	s.registry.update(id, func(t *model.TransferTask) {
		t.Progress = 0
		t.TransferredBytes = 0
		t.Multipart = nil
	})
	s.reserve()
	s.launch(t, launchRetry, stale)
}

func (s *Service) scheduleRetry(id string, retryCount int) {
	s.stopRetryTimer(id)
	delay := retryBackoff(s.opts.RetryDelay, retryCount)
	s.logger.Debug("transfer: retry scheduled", "task_id", id, "delay", delay)
	s.retryTimers[id] = s.clock.AfterFunc(delay, func() {
		s.post(retryMsg{id: id, auto: true})
	})
}

func (s *Service) stopRetryTimer(id string) {
	if stop, ok := s.retryTimers[id]; ok {
		stop()
		delete(s.retryTimers, id)
	}
}

// retryBackoff doubles base for every retry already made, up to
// maxRetryBackoff.
func retryBackoff(base time.Duration, retryCount int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base
	for i := 0; i < retryCount; i++ {
		d *= 2
		if d >= maxRetryBackoff {
			return maxRetryBackoff
		}
	}
	return min(d, maxRetryBackoff)
}
