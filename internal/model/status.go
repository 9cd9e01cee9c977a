package model

// TaskStatus represents the status of a transfer task
type TaskStatus string

const (
	// TaskStatusPending means the task is queued but not started
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusInProgress means bytes are being transferred
	TaskStatusInProgress TaskStatus = "in-progress"

	// TaskStatusPaused means the user suspended the transfer
	TaskStatusPaused TaskStatus = "paused"

	// TaskStatusCompleted means the task finished successfully
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusFailed means the last attempt ended with an error
	TaskStatusFailed TaskStatus = "failed"

	// TaskStatusCancelled means the task was cancelled by user
	TaskStatusCancelled TaskStatus = "cancelled"
)

// AllStatuses lists every status in lifecycle order.
func AllStatuses() []TaskStatus {
	return []TaskStatus{
		TaskStatusPending,
		TaskStatusInProgress,
		TaskStatusPaused,
		TaskStatusCompleted,
		TaskStatusFailed,
		TaskStatusCancelled,
	}
}

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsValid reports whether ts is one of the known statuses.
func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusPaused,
		TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	}
	return false
}

// IsActive returns true if bytes are currently moving for the task
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusInProgress
}

// IsTerminal returns true if the task reached completed, failed or cancelled.
// A failed task may still be retried.
func (ts TaskStatus) IsTerminal() bool {
	switch ts {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	case TaskStatusPending, TaskStatusInProgress, TaskStatusPaused:
		return false
	}
	return false
}

// CanTransitionTo reports whether moving from ts to next is a legal edge of
// the task state machine.
func (ts TaskStatus) CanTransitionTo(next TaskStatus) bool {
	switch ts {
	case TaskStatusPending:
		return next == TaskStatusInProgress || next == TaskStatusCancelled
	case TaskStatusInProgress:
		switch next {
		case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled, TaskStatusPaused:
			return true
		}
		return false
	case TaskStatusPaused:
		return next == TaskStatusInProgress || next == TaskStatusCancelled
	case TaskStatusFailed:
		return next == TaskStatusInProgress
	case TaskStatusCompleted, TaskStatusCancelled:
		return false
	}
	return false
}
