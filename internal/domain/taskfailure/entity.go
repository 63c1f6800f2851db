package taskfailure

import (
	"time"

	"github.com/google/uuid"
)

// AsyncTaskFailure records an async task that exhausted its retries.
// Rows are append-only; operators use them to reconstruct failures even
// when no user could be notified.
type AsyncTaskFailure struct {
	ID            uuid.UUID `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	TaskName      string    `json:"task_name"`
	RequestID     string    `json:"request_id"`
	FailureReason string    `json:"failure_reason"`
}

func New(taskName, requestID, failureReason string) AsyncTaskFailure {
	return AsyncTaskFailure{
		ID:            uuid.New(),
		CreatedAt:     time.Now(),
		TaskName:      taskName,
		RequestID:     requestID,
		FailureReason: failureReason,
	}
}
