package transfer

import (
	"sync"

	"github.com/ytget/s3-upload-tool/internal/model"
)

// registry stores tasks by id and remembers creation order.
//
// Only the dispatcher writes, always under the write lock. The dispatcher
// may read without locking; every other goroutine reads copies under the
// read lock.
type registry struct {
	mu    sync.RWMutex
	tasks map[string]*model.TransferTask
	order []string
}

func newRegistry() *registry {
	return &registry{tasks: make(map[string]*model.TransferTask)}
}

func (r *registry) insert(t *model.TransferTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[t.ID]; exists {
		return model.ErrDuplicateTaskID
	}
	r.tasks[t.ID] = t
	r.order = append(r.order, t.ID)
	return nil
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[id]; !exists {
		return false
	}
	delete(r.tasks, id)
	for i, other := range r.order {
		if other == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// clear drops every task and returns the ids in creation order.
func (r *registry) clear() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.order
	r.tasks = make(map[string]*model.TransferTask)
	r.order = nil
	return ids
}

// get returns the live record. Dispatcher only.
func (r *registry) get(id string) *model.TransferTask {
	return r.tasks[id]
}

// update applies fn to the live record under the write lock. Dispatcher only.
func (r *registry) update(id string, fn func(*model.TransferTask)) *model.TransferTask {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil
	}
	fn(t)
	return t
}

// ids returns matching ids in creation order. Dispatcher only.
func (r *registry) ids(keep func(*model.TransferTask) bool) []string {
	var ids []string
	for _, id := range r.order {
		if keep == nil || keep(r.tasks[id]) {
			ids = append(ids, id)
		}
	}
	return ids
}

// first returns the earliest created task matching keep. Dispatcher only.
func (r *registry) first(keep func(*model.TransferTask) bool) *model.TransferTask {
	for _, id := range r.order {
		if t := r.tasks[id]; keep(t) {
			return t
		}
	}
	return nil
}

func (r *registry) snapshot(id string) (*model.TransferTask, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// list returns copies of matching tasks in creation order.
func (r *registry) list(keep func(*model.TransferTask) bool) []*model.TransferTask {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*model.TransferTask, 0, len(r.order))
	for _, id := range r.order {
		t := r.tasks[id]
		if keep == nil || keep(t) {
			tasks = append(tasks, t.Clone())
		}
	}
	return tasks
}

// each calls fn with every live task under the read lock. fn must not
// retain or modify the task.
func (r *registry) each(fn func(*model.TransferTask)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		fn(r.tasks[id])
	}
}
