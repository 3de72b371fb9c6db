package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arkive-ai/arkive-backend/internal/models"
)

// Store is the Postgres-backed session and message ledger.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Resolve finds the session for the given id, refreshing last_active. A
// missing or malformed id is not an error: a fresh session is created and
// silently substituted, so callers always get a usable session back.
func (s *Store) Resolve(ctx context.Context, userID, sessionID string) (*models.Session, error) {
	if sessionID != "" {
		id, err := uuid.Parse(sessionID)
		if err == nil {
			sess, err := s.touch(ctx, id)
			if err == nil {
				return sess, nil
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("look up session %s: %w", id, err)
			}
		}
	}

	return s.create(ctx, userID)
}

func (s *Store) touch(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var sess models.Session
	err := s.db.QueryRow(ctx,
		`UPDATE sessions SET last_active = now()
		 WHERE id = $1
		 RETURNING id, user_id, created_at, last_active`,
		id,
	).Scan(&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.LastActive)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) create(ctx context.Context, userID string) (*models.Session, error) {
	var sess models.Session
	err := s.db.QueryRow(ctx,
		`INSERT INTO sessions (id, user_id)
		 VALUES ($1, $2)
		 RETURNING id, user_id, created_at, last_active`,
		uuid.New(), userID,
	).Scan(&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.LastActive)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &sess, nil
}

// AppendTurn writes the user message and the assistant message of one chat
// turn in a single transaction, so concurrent turns against the same session
// can never interleave a pair.
func (s *Store) AppendTurn(ctx context.Context, sessionID uuid.UUID, user, assistant models.Message) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, msg := range []models.Message{user, assistant} {
		sources := msg.Sources
		if sources == nil {
			sources = []models.Source{}
		}
		sourcesJSON, err := json.Marshal(sources)
		if err != nil {
			return fmt.Errorf("marshal sources: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO messages (session_id, role, content, sources, confidence, flagged)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			sessionID, msg.Role, msg.Content, sourcesJSON, msg.Confidence, msg.Flagged,
		)
		if err != nil {
			return fmt.Errorf("insert %s message: %w", msg.Role, err)
		}
	}

	if _, err := tx.Exec(ctx, "UPDATE sessions SET last_active = now() WHERE id = $1", sessionID); err != nil {
		return fmt.Errorf("refresh last_active: %w", err)
	}

	return tx.Commit(ctx)
}

// ListRecent returns the user's most recently active sessions, newest first.
func (s *Store) ListRecent(ctx context.Context, userID string, limit int) ([]models.Session, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, created_at, last_active
		 FROM sessions WHERE user_id = $1
		 ORDER BY last_active DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		var sess models.Session
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.LastActive); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// History returns all messages in a session, oldest first.
func (s *Store) History(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, session_id, role, content, sources, confidence, flagged, created_at
		 FROM messages WHERE session_id = $1
		 ORDER BY created_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var msg models.Message
		var sourcesJSON []byte
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &sourcesJSON, &msg.Confidence, &msg.Flagged, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if err := json.Unmarshal(sourcesJSON, &msg.Sources); err != nil {
			return nil, fmt.Errorf("decode sources: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
