package content

import (
	"time"

	"github.com/google/uuid"
)

type UploadStatus string

const (
	StatusWaiting UploadStatus = "WAITING"
	StatusSuccess UploadStatus = "SUCCESS"
	StatusFailed  UploadStatus = "FAILED"
)

// BinaryContent tracks only the upload status signal of a stored object.
// The bytes themselves live in object storage.
type BinaryContent struct {
	ID           uuid.UUID    `json:"id"`
	CreatedAt    time.Time    `json:"created_at"`
	FileName     string       `json:"file_name"`
	ContentType  string       `json:"content_type"`
	Size         int64        `json:"size"`
	UploadStatus UploadStatus `json:"upload_status"`
}
