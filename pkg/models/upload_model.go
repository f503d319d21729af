package models

import "time"

// UploadResult is the per-file entry of the /upload response body.
type UploadResult struct {
	FileName string       `json:"file_name"`
	Status   UploadStatus `json:"status"`
	StoredAs string       `json:"stored_as,omitempty"`
	Error    string       `json:"error,omitempty"`
}

type UploadStatus string

const (
	UploadSuccess UploadStatus = "success"
	UploadFailed  UploadStatus = "failed"
)

// UploadRecord is the persisted row for one stored file.
type UploadRecord struct {
	ID        int          `json:"id" db:"id"`
	FileName  string       `json:"file_name" db:"file_name"`
	StoredAs  string       `json:"stored_as" db:"stored_as"`
	SizeBytes int64        `json:"size_bytes" db:"size_bytes"`
	Status    UploadStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}
