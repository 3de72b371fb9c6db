package compliance

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkive-ai/arkive-backend/internal/ingest"
	"github.com/arkive-ai/arkive-backend/internal/llm"
	"github.com/arkive-ai/arkive-backend/internal/vectorstore"
)

type stubGateway struct {
	responses []string
	err       error
	calls     int
}

func (s *stubGateway) Chat(_ context.Context, _ llm.ChatRequest) (*llm.ChatResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	content := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return &llm.ChatResponse{Content: content}, nil
}

func (s *stubGateway) Embed(_ context.Context, _ llm.EmbeddingRequest) (*llm.EmbeddingResponse, error) {
	return nil, errors.New("not implemented")
}

func (s *stubGateway) Provider(string) (llm.Provider, error) { return nil, errors.New("none") }
func (s *stubGateway) ListModels() []llm.ModelInfo           { return nil }

type fakeIngestor struct {
	result    *ingest.Result
	ingestErr error
	deleted   []uuid.UUID
}

func (f *fakeIngestor) IngestFile(_ context.Context, _, _ string, _ bool) (*ingest.Result, error) {
	if f.ingestErr != nil {
		return nil, f.ingestErr
	}
	return f.result, nil
}

func (f *fakeIngestor) DeleteDocument(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAuditor struct {
	events  []string
	details []map[string]any
}

func (a *fakeAuditor) Log(_ context.Context, eventType, _ string, details map[string]any) {
	a.events = append(a.events, eventType)
	a.details = append(a.details, details)
}

func policyDoc() *ingest.Result {
	return &ingest.Result{
		DocID:    uuid.New(),
		Filename: "acme-policy.pdf",
		Chunks: []vectorstore.Chunk{
			{ChunkIndex: 0, Content: "All automated decisions are explained to affected users."},
			{ChunkIndex: 1, Content: "A human reviewer signs off on every high-risk outcome."},
		},
	}
}

func TestParseVerdictStripsCodeFences(t *testing.T) {
	got := parseVerdict("```json\n{\"status\": \"pass\", \"note\": \"Covered in section 2.\"}\n```")
	assert.Equal(t, "pass", got.Status)
	assert.Equal(t, "Covered in section 2.", got.Note)

	got = parseVerdict("```\n{\"status\": \"fail\", \"note\": \"Not mentioned.\"}\n```")
	assert.Equal(t, "fail", got.Status)
}

func TestParseVerdictGarbageDefaultsToFail(t *testing.T) {
	for _, raw := range []string{
		"I think this policy is pretty good overall.",
		"{\"status\": \"maybe\", \"note\": \"unsure\"}",
		"",
	} {
		got := parseVerdict(raw)
		assert.Equal(t, "fail", got.Status, "raw: %q", raw)
		assert.Equal(t, "Could not evaluate this pillar.", got.Note)
	}
}

func TestCheckAggregatesScoreAndGaps(t *testing.T) {
	// First two pillars pass, the remaining six fail.
	gw := &stubGateway{responses: []string{
		`{"status": "pass", "note": "Explained in the transparency section."}`,
		`{"status": "pass", "note": "Human review is described."}`,
		`{"status": "fail", "note": "No mention of data protection."}`,
	}}
	ingestor := &fakeIngestor{result: policyDoc()}
	audit := &fakeAuditor{}

	report, err := NewScorer(gw, "test-model", ingestor, audit).Check(context.Background(), "acme-policy.pdf", "alice")
	require.NoError(t, err)

	assert.Equal(t, "2/8", report.Score)
	assert.Equal(t, len(Pillars), gw.calls)
	assert.Len(t, report.Results, len(Pillars))
	assert.Equal(t, "pass", report.Results["transparency"].Status)
	assert.Equal(t, "fail", report.Results["privacy"].Status)

	require.Len(t, report.Gaps, 6)
	assert.Equal(t, "Add a section on privacy & data protection: No mention of data protection.", report.Gaps[0])

	require.Len(t, ingestor.deleted, 1, "temporary document must be removed")
	assert.Equal(t, ingestor.result.DocID, ingestor.deleted[0])

	require.Len(t, audit.events, 1)
	assert.Equal(t, "compliance_check", audit.events[0])
	assert.Equal(t, "2/8", audit.details[0]["score"])
	assert.Equal(t, 6, audit.details[0]["gaps"])
}

func TestCheckCleansUpWhenPillarFails(t *testing.T) {
	gw := &stubGateway{err: errors.New("provider down")}
	ingestor := &fakeIngestor{result: policyDoc()}

	_, err := NewScorer(gw, "test-model", ingestor, &fakeAuditor{}).Check(context.Background(), "acme-policy.pdf", "alice")
	require.Error(t, err)
	assert.Len(t, ingestor.deleted, 1, "cleanup must run even on failure")
}

func TestCheckIngestErrorPropagates(t *testing.T) {
	ingestor := &fakeIngestor{ingestErr: errors.New("unsupported file type")}
	_, err := NewScorer(&stubGateway{}, "test-model", ingestor, &fakeAuditor{}).Check(context.Background(), "x.docx", "alice")
	assert.Error(t, err)
	assert.Empty(t, ingestor.deleted)
}
