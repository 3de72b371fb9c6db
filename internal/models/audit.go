package models

import (
	"encoding/json"
	"time"
)

const (
	EventQuery           = "query"
	EventFlaggedQuery    = "flagged_query"
	EventDocumentUpload  = "document_upload"
	EventComplianceCheck = "compliance_check"
)

type AuditLog struct {
	ID        int64           `json:"id" db:"id"`
	EventType string          `json:"event_type" db:"event_type"`
	UserID    string          `json:"user_id" db:"user_id"`
	Details   json.RawMessage `json:"details" db:"details"`
	CreatedAt time.Time       `json:"timestamp" db:"created_at"`
}
