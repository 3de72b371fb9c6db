package compliance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/arkive-ai/arkive-backend/internal/ingest"
	"github.com/arkive-ai/arkive-backend/internal/llm"
	"github.com/arkive-ai/arkive-backend/internal/models"
	"github.com/arkive-ai/arkive-backend/internal/vectorstore"
)

// Ingestor is the slice of the ingestion service the scorer needs: temporary
// ingestion of the document under audit and cleanup afterwards.
type Ingestor interface {
	IngestFile(ctx context.Context, path, uploadedBy string, permanent bool) (*ingest.Result, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error
}

// Auditor records compliance checks on the audit trail.
type Auditor interface {
	Log(ctx context.Context, eventType, userID string, details map[string]any)
}

// Scorer audits a policy document against the compliance pillars.
type Scorer struct {
	gateway  llm.Gateway
	model    string
	ingestor Ingestor
	audit    Auditor
}

func NewScorer(gw llm.Gateway, model string, ingestor Ingestor, audit Auditor) *Scorer {
	return &Scorer{gateway: gw, model: model, ingestor: ingestor, audit: audit}
}

// PillarResult is the verdict for one pillar.
type PillarResult struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// Report is the full audit outcome for one document.
type Report struct {
	Filename string                  `json:"filename"`
	Score    string                  `json:"score"`
	Results  map[string]PillarResult `json:"results"`
	Gaps     []string                `json:"gaps"`
}

// Check ingests the document temporarily, scores every pillar and removes
// the document again. The document under audit never becomes part of the
// knowledge base, even when a pillar check fails midway.
func (s *Scorer) Check(ctx context.Context, path, userID string) (*Report, error) {
	ingested, err := s.ingestor.IngestFile(ctx, path, userID, false)
	if err != nil {
		return nil, fmt.Errorf("ingest for compliance check: %w", err)
	}
	defer func() {
		if err := s.ingestor.DeleteDocument(context.WithoutCancel(ctx), ingested.DocID); err != nil {
			slog.Warn("compliance check cleanup failed", "doc_id", ingested.DocID, "error", err)
		}
	}()

	results := make(map[string]PillarResult, len(Pillars))
	gaps := []string{}
	passCount := 0

	for _, pillar := range Pillars {
		result, err := s.checkPillar(ctx, pillar, ingested.Chunks)
		if err != nil {
			return nil, fmt.Errorf("check pillar %s: %w", pillar.Key, err)
		}
		results[pillar.Key] = result
		if result.Status == "pass" {
			passCount++
		} else {
			gaps = append(gaps, fmt.Sprintf("Add a section on %s: %s", strings.ToLower(pillar.Label), result.Note))
		}
	}

	score := fmt.Sprintf("%d/%d", passCount, len(Pillars))

	s.audit.Log(ctx, models.EventComplianceCheck, userID, map[string]any{
		"filename": ingested.Filename,
		"score":    score,
		"gaps":     len(gaps),
	})

	return &Report{
		Filename: ingested.Filename,
		Score:    score,
		Results:  results,
		Gaps:     gaps,
	}, nil
}

// checkPillar asks the LLM for a strict JSON verdict on one pillar. A reply
// that cannot be parsed counts as a fail, not an error.
func (s *Scorer) checkPillar(ctx context.Context, pillar Pillar, chunks []vectorstore.Chunk) (PillarResult, error) {
	var context strings.Builder
	for i, c := range chunks {
		if i >= 6 {
			break
		}
		fmt.Fprintf(&context, "\n[Section %d]\n%s\n", i+1, c.Content)
	}

	prompt := fmt.Sprintf(`You are an AI compliance auditor. Analyse the following policy document excerpt and determine if it addresses the compliance requirement below.

Compliance Requirement: %s

Policy Document Excerpt:
%s

Respond ONLY with a valid JSON object in exactly this format with no extra text:
{
  "status": "pass" or "fail",
  "note": "one sentence explanation of your finding"
}`, pillar.Question, context.String())

	resp, err := s.gateway.Chat(ctx, llm.ChatRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   150,
	})
	if err != nil {
		return PillarResult{}, err
	}

	return parseVerdict(resp.Content), nil
}

func parseVerdict(raw string) PillarResult {
	raw = stripCodeFence(strings.TrimSpace(raw))

	var result PillarResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil || (result.Status != "pass" && result.Status != "fail") {
		return PillarResult{Status: "fail", Note: "Could not evaluate this pillar."}
	}
	return result
}

// stripCodeFence unwraps ```json ... ``` style fences some models insist on.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	parts := strings.Split(s, "```")
	if len(parts) < 2 {
		return s
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}
