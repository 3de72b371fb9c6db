package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arkive-ai/arkive-backend/internal/models"
)

// Service is the append-only audit event log. Entries are never mutated or
// deleted and are exempt from document retention.
type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// Log appends an event. It is fire-and-forget: a failed write is reported to
// operators through slog and never aborts the request that triggered it.
func (s *Service) Log(ctx context.Context, eventType, userID string, details map[string]any) {
	payload, err := json.Marshal(details)
	if err != nil {
		slog.Error("audit log marshal failed", "event_type", eventType, "error", err)
		return
	}

	_, err = s.db.Exec(ctx,
		"INSERT INTO audit_logs (event_type, user_id, details) VALUES ($1, $2, $3)",
		eventType, userID, payload,
	)
	if err != nil {
		slog.Error("audit log write failed", "event_type", eventType, "user_id", userID, "error", err)
	}
}

// Recent returns the newest entries, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, event_type, user_id, details, created_at
		 FROM audit_logs ORDER BY created_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	logs := []models.AuditLog{}
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.EventType, &l.UserID, &l.Details, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
