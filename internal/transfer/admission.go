package transfer

import (
	"time"

	"github.com/ytget/s3-upload-tool/internal/config"
	"github.com/ytget/s3-upload-tool/internal/model"
)

func (s *Service) startAll() {
	s.draining = true
	s.admit()
}

// admit starts pending tasks in creation order while automatic admission is
// on and slots are free. Starts are paced by the admission mode: sequential
// waits StartDelay between starts, parallel waits StartDelay after every
// BatchSize starts.
func (s *Service) admit() {
	if !s.draining {
		return
	}

	for s.hasFreeSlot() {
		if wait := s.nextStartAt.Sub(s.clock.Now()); wait > 0 {
			s.armAdmission(wait)
			return
		}

		t := s.registry.first(s.isAdmissible)
		if t == nil {
			return
		}
		s.startPending(t)
		s.paceStart()
	}
}

func (s *Service) isAdmissible(t *model.TransferTask) bool {
	if t.Status != model.TaskStatusPending {
		return false
	}
	_, busy := s.probing[t.ID]
	return !busy
}

// paceStart records a start for the admission mode's spacing rule.
func (s *Service) paceStart() {
	now := s.clock.Now()
	switch s.opts.Mode {
	case config.ModeSequential:
		s.nextStartAt = now.Add(s.opts.StartDelay)
	case config.ModeParallel:
		s.roundStarts++
		if s.roundStarts >= s.opts.BatchSize {
			s.roundStarts = 0
			s.nextStartAt = now.Add(s.opts.StartDelay)
		}
	}
}

func (s *Service) armAdmission(wait time.Duration) {
	if s.admitTimer != nil {
		return
	}
	s.admitTimer = s.clock.AfterFunc(wait, func() {
		s.post(admitTickMsg{})
	})
}
