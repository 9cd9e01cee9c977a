package s3exec

import (
	"sync"

	"github.com/ytget/s3-upload-tool/internal/model"
)

// partCount is the number of chunkSize parts needed for size bytes.
func partCount(size, chunkSize int64) int {
	if size <= 0 || chunkSize <= 0 {
		return 0
	}
	return int((size + chunkSize - 1) / chunkSize)
}

// partRange returns the offset and length of part number (1-based).
func partRange(number int, size, chunkSize int64) (offset, length int64) {
	offset = int64(number-1) * chunkSize
	return offset, min(chunkSize, size-offset)
}

// partAcker reports parts that finish out of order in part number order.
type partAcker struct {
	mu    sync.Mutex
	next  int
	ready map[int]model.CompletedPart
	emit  func(model.CompletedPart)
}

func newPartAcker(first int, emit func(model.CompletedPart)) *partAcker {
	return &partAcker{next: first, ready: make(map[int]model.CompletedPart), emit: emit}
}

func (a *partAcker) done(part model.CompletedPart) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.ready[part.Number] = part
	for {
		p, ok := a.ready[a.next]
		if !ok {
			return
		}
		delete(a.ready, a.next)
		a.emit(p)
		a.next++
	}
}
