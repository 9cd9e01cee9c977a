package model

import "testing"

func TestTaskStatus_IsActive(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		expected bool
	}{
		{TaskStatusPending, false},
		{TaskStatusInProgress, true},
		{TaskStatusPaused, false},
		{TaskStatusCompleted, false},
		{TaskStatusFailed, false},
		{TaskStatusCancelled, false},
	}

	for _, test := range tests {
		result := test.status.IsActive()
		if result != test.expected {
			t.Errorf("TaskStatus(%s).IsActive() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestTaskStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		expected bool
	}{
		{TaskStatusPending, false},
		{TaskStatusInProgress, false},
		{TaskStatusPaused, false},
		{TaskStatusCompleted, true},
		{TaskStatusFailed, true},
		{TaskStatusCancelled, true},
	}

	for _, test := range tests {
		result := test.status.IsTerminal()
		if result != test.expected {
			t.Errorf("TaskStatus(%s).IsTerminal() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestTaskStatus_CanTransitionTo(t *testing.T) {
	legal := map[TaskStatus][]TaskStatus{
		TaskStatusPending:    {TaskStatusInProgress, TaskStatusCancelled},
		TaskStatusInProgress: {TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled, TaskStatusPaused},
		TaskStatusPaused:     {TaskStatusInProgress, TaskStatusCancelled},
		TaskStatusFailed:     {TaskStatusInProgress},
	}

	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			expected := false
			for _, allowed := range legal[from] {
				if allowed == to {
					expected = true
				}
			}
			if got := from.CanTransitionTo(to); got != expected {
				t.Errorf("%s -> %s: CanTransitionTo = %v, expected %v", from, to, got, expected)
			}
		}
	}
}

func TestTaskStatus_IsValid(t *testing.T) {
	for _, status := range AllStatuses() {
		if !status.IsValid() {
			t.Errorf("TaskStatus(%s).IsValid() = false", status)
		}
	}
	if TaskStatus("Downloading").IsValid() {
		t.Error("unknown status reported as valid")
	}
}

func TestTaskStatus_String(t *testing.T) {
	status := TaskStatusInProgress
	expected := "in-progress"
	result := status.String()

	if result != expected {
		t.Errorf("TaskStatus.String() = %s, expected %s", result, expected)
	}
}
