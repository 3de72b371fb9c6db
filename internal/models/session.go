package models

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	LastActive time.Time `json:"last_active" db:"last_active"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Source points at the chunk a retrieved passage came from.
type Source struct {
	Source     string `json:"source"`
	Page       int    `json:"page"`
	ChunkIndex int    `json:"chunk_index"`
}

type Message struct {
	ID         int64     `json:"id" db:"id"`
	SessionID  uuid.UUID `json:"session_id" db:"session_id"`
	Role       string    `json:"role" db:"role"`
	Content    string    `json:"content" db:"content"`
	Sources    []Source  `json:"sources" db:"sources"`
	Confidence float64   `json:"confidence" db:"confidence"`
	Flagged    bool      `json:"flagged" db:"flagged"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
