package models

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Filename    string    `json:"filename" db:"filename"`
	UploadedBy  string    `json:"uploaded_by" db:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at" db:"uploaded_at"`
	TotalPages  int       `json:"total_pages" db:"total_pages"`
	TotalChunks int       `json:"total_chunks" db:"total_chunks"`
	IsPermanent bool      `json:"is_permanent" db:"is_permanent"`
	Status      string    `json:"status" db:"status"`
}

const (
	DocStatusIngested = "ingested"
	DocStatusFailed   = "failed"
)
