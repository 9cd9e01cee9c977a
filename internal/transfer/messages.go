package transfer

import (
	"github.com/ytget/s3-upload-tool/internal/config"
	"github.com/ytget/s3-upload-tool/internal/model"
)

// message is anything the dispatcher applies. Each concrete type is handled
// in Service.handle.
type message interface {
	isMessage()
}

type (
	addTasksMsg struct {
		tasks    []*model.TransferTask
		restored bool
		done     chan error
	}
	startMsg          struct{ id string }
	startAllMsg       struct{}
	pauseMsg          struct{ id string }
	pauseAllMsg       struct{}
	resumeMsg         struct{ id string }
	cancelMsg         struct{ id string }
	cancelAllMsg      struct{}
	removeMsg         struct{ ids []string }
	clearByStatusMsg  struct{ status model.TaskStatus }
	clearAllMsg       struct{}
	retryAllFailedMsg struct{}
	admitTickMsg      struct{}
	retryMsg          struct {
		id   string
		auto bool
	}
	updateProgressMsg struct {
		id          string
		percent     float64
		transferred int64
	}
	setOptionsMsg  struct{ opts config.Options }
	setCallbackMsg struct{ fn func(*model.TransferTask) }
	syncMsg        struct{ done chan struct{} }
)

// Executor events carry the attempt they belong to.
type (
	progressMsg struct {
		id          string
		attempt     uint64
		transferred int64
		total       int64
	}
	completeMsg struct {
		id      string
		attempt uint64
		result  model.TransferResult
	}
	failMsg struct {
		id        string
		attempt   uint64
		err       error
		retryable bool
	}
	multipartStartedMsg struct {
		id      string
		attempt uint64
		state   model.MultipartState
	}
	partCompletedMsg struct {
		id      string
		attempt uint64
		part    model.CompletedPart
	}
	identityMsg struct {
		id    string
		probe uint64
		token string
		err   error
	}
)

func (addTasksMsg) isMessage()         {}
func (startMsg) isMessage()            {}
func (startAllMsg) isMessage()         {}
func (pauseMsg) isMessage()            {}
func (pauseAllMsg) isMessage()         {}
func (resumeMsg) isMessage()           {}
func (cancelMsg) isMessage()           {}
func (cancelAllMsg) isMessage()        {}
func (removeMsg) isMessage()           {}
func (clearByStatusMsg) isMessage()    {}
func (clearAllMsg) isMessage()         {}
func (retryAllFailedMsg) isMessage()   {}
func (admitTickMsg) isMessage()        {}
func (retryMsg) isMessage()            {}
func (updateProgressMsg) isMessage()   {}
func (setOptionsMsg) isMessage()       {}
func (setCallbackMsg) isMessage()      {}
func (syncMsg) isMessage()             {}
func (progressMsg) isMessage()         {}
func (completeMsg) isMessage()         {}
func (failMsg) isMessage()             {}
func (multipartStartedMsg) isMessage() {}
func (partCompletedMsg) isMessage()    {}
func (identityMsg) isMessage()         {}

// taskEvents posts executor reports for one attempt of a task.
type taskEvents struct {
	s       *Service
	attempt uint64
}

var _ Events = (*taskEvents)(nil)

func (e *taskEvents) Progress(id string, transferred, total int64) {
	e.s.post(progressMsg{id: id, attempt: e.attempt, transferred: transferred, total: total})
}

func (e *taskEvents) Complete(id string, result model.TransferResult) {
	e.s.post(completeMsg{id: id, attempt: e.attempt, result: result})
}

func (e *taskEvents) Fail(id string, err error, retryable bool) {
	e.s.post(failMsg{id: id, attempt: e.attempt, err: err, retryable: retryable})
}

func (e *taskEvents) MultipartStarted(id string, state model.MultipartState) {
	e.s.post(multipartStartedMsg{id: id, attempt: e.attempt, state: state})
}

func (e *taskEvents) PartCompleted(id string, part model.CompletedPart) {
	e.s.post(partCompletedMsg{id: id, attempt: e.attempt, part: part})
}
