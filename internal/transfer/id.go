package transfer

import "github.com/google/uuid"

// taskIDPrefix starts every generated task id
const taskIDPrefix = "task-"

// generateTaskID generates a unique task ID
func generateTaskID() string {
	return taskIDPrefix + uuid.NewString()
}
