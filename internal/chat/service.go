package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/arkive-ai/arkive-backend/internal/models"
	"github.com/arkive-ai/arkive-backend/internal/rag"
)

// Ledger persists sessions and their message history.
type Ledger interface {
	Resolve(ctx context.Context, userID, sessionID string) (*models.Session, error)
	AppendTurn(ctx context.Context, sessionID uuid.UUID, user, assistant models.Message) error
	ListRecent(ctx context.Context, userID string, limit int) ([]models.Session, error)
	History(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error)
}

// Auditor records events without ever failing the request path.
type Auditor interface {
	Log(ctx context.Context, eventType, userID string, details map[string]any)
}

// Answerer produces a moderated, grounded answer for one query.
type Answerer interface {
	Answer(ctx context.Context, query string) (*rag.Result, error)
}

// Service ties a chat turn together: session resolution, the answer pipeline,
// the message ledger and the audit trail.
type Service struct {
	ledger   Ledger
	pipeline Answerer
	audit    Auditor
}

func NewService(ledger Ledger, pipeline Answerer, audit Auditor) *Service {
	return &Service{ledger: ledger, pipeline: pipeline, audit: audit}
}

type TurnRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

type TurnResponse struct {
	Answer     string          `json:"answer"`
	Sources    []models.Source `json:"sources"`
	Flagged    bool            `json:"flagged"`
	Confidence float64         `json:"confidence"`
	SessionID  string          `json:"session_id"`
}

// Turn runs one full chat exchange. Flagged turns are persisted like any
// other so the refusal shows up in the session history.
func (s *Service) Turn(ctx context.Context, req TurnRequest) (*TurnResponse, error) {
	sess, err := s.ledger.Resolve(ctx, req.UserID, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	result, err := s.pipeline.Answer(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("answer query: %w", err)
	}

	userMsg := models.Message{
		Role:    models.RoleUser,
		Content: req.Query,
		Flagged: result.Flagged,
	}
	assistantMsg := models.Message{
		Role:       models.RoleAssistant,
		Content:    result.Answer,
		Sources:    result.Sources,
		Confidence: result.Confidence,
		Flagged:    result.Flagged,
	}
	if err := s.ledger.AppendTurn(ctx, sess.ID, userMsg, assistantMsg); err != nil {
		return nil, fmt.Errorf("persist turn: %w", err)
	}

	if result.Flagged {
		s.audit.Log(ctx, models.EventFlaggedQuery, req.UserID, map[string]any{
			"query":  req.Query,
			"reason": result.Reason,
		})
	} else {
		s.audit.Log(ctx, models.EventQuery, req.UserID, map[string]any{
			"query":          req.Query,
			"answer_preview": preview(result.Answer, 100),
			"sources_used":   len(result.Sources),
			"confidence":     result.Confidence,
			"tokens":         result.Tokens,
			"cost_usd":       result.CostUSD,
		})
	}

	return &TurnResponse{
		Answer:     result.Answer,
		Sources:    result.Sources,
		Flagged:    result.Flagged,
		Confidence: result.Confidence,
		SessionID:  sess.ID.String(),
	}, nil
}

// Sessions lists the user's most recently active sessions.
func (s *Service) Sessions(ctx context.Context, userID string) ([]models.Session, error) {
	return s.ledger.ListRecent(ctx, userID, 10)
}

// History returns the full message history of one session, oldest first.
func (s *Service) History(ctx context.Context, sessionID string) ([]models.Message, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id: %w", err)
	}
	return s.ledger.History(ctx, id)
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
