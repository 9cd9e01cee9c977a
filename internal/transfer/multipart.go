package transfer

import (
	"context"
	"fmt"

	"github.com/ytget/s3-upload-tool/internal/model"
)

// pendingProbe is an identity check in flight. Its slot is already reserved.
type pendingProbe struct {
	seq  uint64
	kind launchKind
}

// canContinueParts reports whether a launch can skip acknowledged parts.
func (s *Service) canContinueParts(t *model.TransferTask) bool {
	return s.opts.Resumable && t.Multipart != nil && len(t.Multipart.CompletedParts) > 0
}

// needsIdentityCheck reports whether the remote identity must be compared
// before continuing from preserved parts. Without a prober the parts are
// trusted.
func (s *Service) needsIdentityCheck(t *model.TransferTask) bool {
	return s.prober != nil && s.canContinueParts(t) && t.Multipart.IdentityToken != ""
}

// beginProbe reserves a slot and asks the prober for the current identity
// on a separate goroutine. The result comes back as an identityMsg.
func (s *Service) beginProbe(t *model.TransferTask, kind launchKind) {
	s.reserve()
	s.probeSeq++
	seq := s.probeSeq
	s.probing[t.ID] = pendingProbe{seq: seq, kind: kind}

	task := t.Clone()
	prober := s.prober
	parent := s.ctx
	s.logger.Debug("transfer: checking remote identity", "task_id", t.ID, "how", kind.String())

	go func() {
		ctx, cancel := context.WithTimeout(parent, identityTimeout)
		defer cancel()
		token, err := prober.Identity(ctx, task)
		s.post(identityMsg{id: task.ID, probe: seq, token: token, err: err})
	}()
}

// dropProbe abandons an identity check and frees its slot.
func (s *Service) dropProbe(id string) {
	if _, ok := s.probing[id]; ok {
		delete(s.probing, id)
		s.release()
	}
}

func (s *Service) onIdentity(m identityMsg) {
	p, ok := s.probing[m.id]
	if !ok || p.seq != m.probe {
		return
	}
	delete(s.probing, m.id)

	t := s.registry.get(m.id)
	if t == nil || t.Status != expectedStatus(p.kind) || t.Multipart == nil {
		s.release()
		s.admit()
		return
	}

	if m.err != nil {
		s.release()
		s.registry.update(m.id, func(t *model.TransferTask) {
			t.Error = &model.TaskError{
				Kind:    model.ErrorKindTransfer,
				Message: fmt.Sprintf("identity check failed: %v", m.err),
			}
		})
		s.logger.Warn("transfer: identity check failed", "task_id", m.id, "error", m.err)
		s.notify(t)
		s.admit()
		return
	}

	if m.token == t.Multipart.IdentityToken {
		s.launch(t, p.kind, "")
		return
	}

	// The remote side changed; acknowledged parts would corrupt the result.
	stale := t.Multipart.SessionID
	previous := t.Multipart.IdentityToken
	s.registry.update(m.id, func(t *model.TransferTask) {
		t.Multipart.Reset()
		t.Multipart.SessionID = ""
		t.Multipart.IdentityToken = m.token
		t.TransferredBytes = 0
		t.Progress = 0
		t.Error = &model.TaskError{
			Kind:    model.ErrorKindResumeInvalidated,
			Message: model.ErrResumeInvalidated.Error(),
		}
	})
	s.save(t)
	s.logger.Warn("transfer: resume invalidated, restarting",
		"task_id", m.id, "expected", previous, "actual", m.token)
	s.launch(t, p.kind, stale)
}

func expectedStatus(kind launchKind) model.TaskStatus {
	switch kind {
	case launchResume:
		return model.TaskStatusPaused
	case launchRetry:
		return model.TaskStatusFailed
	case launchStart:
		return model.TaskStatusPending
	}
	return model.TaskStatusPending
}

func (s *Service) onMultipartStarted(m multipartStartedMsg) {
	t := s.current(m.id, m.attempt)
	if t == nil {
		return
	}
	if m.state.ChunkSize <= 0 || m.state.TotalParts < 0 {
		s.logger.CaptureWarn("transfer: ignoring malformed multipart state", "task_id", m.id,
			"chunk_size", m.state.ChunkSize, "total_parts", m.state.TotalParts)
		return
	}

	state := m.state.Clone()
	s.registry.update(m.id, func(t *model.TransferTask) {
		if prev := t.Multipart; prev != nil && prev.SessionID != "" && prev.SessionID == state.SessionID {
			// Same session continuing: acknowledged parts stay.
			prev.ChunkSize = state.ChunkSize
			prev.TotalParts = state.TotalParts
			if prev.IdentityToken == "" {
				prev.IdentityToken = state.IdentityToken
			}
			return
		}
		state.Reset()
		t.Multipart = state
	})
	s.save(t)
	s.logger.Debug("transfer: multipart session", "task_id", m.id,
		"session", state.SessionID, "parts", state.TotalParts)
}

func (s *Service) onPartCompleted(m partCompletedMsg) {
	t := s.current(m.id, m.attempt)
	if t == nil {
		return
	}
	if t.Multipart == nil {
		s.logger.CaptureWarn("transfer: part reported without a multipart session", "task_id", m.id, "part", m.part.Number)
		return
	}
	if err := validatePart(t.Multipart, t.TotalBytes, m.part); err != nil {
		s.logger.CaptureWarn("transfer: rejecting part", "task_id", m.id, "part", m.part.Number, "error", err.Error())
		return
	}

	part := m.part
	s.registry.update(m.id, func(t *model.TransferTask) {
		t.Multipart.CompletedParts = append(t.Multipart.CompletedParts, part)
		t.Multipart.LastPartNumber = part.Number
	})
	s.save(t)

	if done := t.Multipart.CompletedBytes(); done > t.TransferredBytes {
		percent := t.Progress
		if t.TotalBytes > 0 {
			percent = float64(done) / float64(t.TotalBytes) * 100
		}
		s.applyProgress(t, percent, done, t.TotalBytes)
		return
	}
	s.notify(t)
}

// validatePart checks that part extends the list in order and keeps the sum
// of part sizes within total.
func validatePart(m *model.MultipartState, total int64, part model.CompletedPart) error {
	if part.Number != m.LastPartNumber+1 {
		return fmt.Errorf("%w: got %d, expected %d", model.ErrInvalidPartNumber, part.Number, m.LastPartNumber+1)
	}
	if m.TotalParts > 0 && part.Number > m.TotalParts {
		return fmt.Errorf("%w: %d of %d", model.ErrInvalidPartNumber, part.Number, m.TotalParts)
	}
	if part.Size <= 0 {
		return fmt.Errorf("%w: part %d is empty", model.ErrInvalidPartNumber, part.Number)
	}
	if total > 0 && m.CompletedBytes()+part.Size > total {
		return fmt.Errorf("%w: %d + %d > %d", model.ErrPartsExceedTotal, m.CompletedBytes(), part.Size, total)
	}
	return nil
}
