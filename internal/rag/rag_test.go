package rag

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkive-ai/arkive-backend/internal/llm"
	"github.com/arkive-ai/arkive-backend/internal/moderation"
	"github.com/arkive-ai/arkive-backend/internal/vectorstore"
)

type stubGateway struct {
	content string
	err     error
	calls   int
	prompts []string
}

func (s *stubGateway) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	s.calls++
	for _, m := range req.Messages {
		s.prompts = append(s.prompts, m.Content)
	}
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{Content: s.content, TotalTokens: 42, CostUSD: 0.0003}, nil
}

func (s *stubGateway) Embed(_ context.Context, _ llm.EmbeddingRequest) (*llm.EmbeddingResponse, error) {
	return nil, errors.New("not implemented")
}

func (s *stubGateway) Provider(string) (llm.Provider, error) { return nil, errors.New("none") }
func (s *stubGateway) ListModels() []llm.ModelInfo           { return nil }

// wordEmbedder is a deterministic bag-of-words embedder: texts sharing words
// end up close in cosine space, which is all retrieval tests need.
type wordEmbedder struct {
	err   error
	calls int
}

func (e *wordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = wordVector(t)
	}
	return out, nil
}

func (e *wordEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return wordVector(text), nil
}

func wordVector(text string) []float32 {
	vec := make([]float32, 64)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(strings.Trim(w, ".,?!\"'")))
		vec[h.Sum32()%64]++
	}
	return vec
}

type stubModerator struct {
	flagged bool
	reason  string
	err     error
}

func (m *stubModerator) Name() string { return "stub" }

func (m *stubModerator) Classify(_ context.Context, _ string) (*moderation.Result, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &moderation.Result{Flagged: m.flagged, Reason: m.reason}, nil
}

func TestConfidenceIsMeanScoreScaled(t *testing.T) {
	chunks := []vectorstore.SearchResult{
		{Score: 0.8},
		{Score: 0.6},
	}
	assert.InDelta(t, 70.0, Confidence(chunks), 1e-9)
	assert.Zero(t, Confidence(nil))

	// Rounded to one decimal place.
	uneven := []vectorstore.SearchResult{{Score: 1}, {Score: 0}, {Score: 0}}
	assert.InDelta(t, 33.3, Confidence(uneven), 1e-9)
}

func TestGenerateEmptyRetrievalSkipsLLM(t *testing.T) {
	gw := &stubGateway{content: "should not be used"}
	g := NewGenerator(gw, "test-model")

	got, err := g.Generate(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Equal(t, NoInfoAnswer, got.Answer)
	assert.Zero(t, got.Confidence)
	assert.Zero(t, gw.calls)
}

func TestGeneratePromptIsGrounded(t *testing.T) {
	gw := &stubGateway{content: "The policy covers transparency. Sources: unesco-ai.pdf"}
	g := NewGenerator(gw, "test-model")

	chunks := []vectorstore.SearchResult{
		{Content: "algorithmic impact assessments are published", Source: "unesco-ai.pdf", Page: 2, Score: 0.9},
	}

	got, err := g.Generate(context.Background(), "Does the policy address transparency?", chunks)
	require.NoError(t, err)
	assert.Equal(t, 1, gw.calls)
	assert.InDelta(t, 90.0, got.Confidence, 1e-9)
	assert.Equal(t, 42, got.Tokens)
	assert.InDelta(t, 0.0003, got.CostUSD, 1e-9)

	require.Len(t, gw.prompts, 1)
	prompt := gw.prompts[0]
	assert.Contains(t, prompt, "[Source 1 - unesco-ai.pdf Page 2]")
	assert.Contains(t, prompt, "Answer ONLY based on the context above")
	assert.Contains(t, prompt, "Does the policy address transparency?")
}

func TestGenerateLLMErrorPropagates(t *testing.T) {
	gw := &stubGateway{err: errors.New("provider down")}
	g := NewGenerator(gw, "test-model")

	_, err := g.Generate(context.Background(), "query", []vectorstore.SearchResult{{Content: "x", Score: 1}})
	assert.Error(t, err)
}

func TestPipelineFlaggedShortCircuit(t *testing.T) {
	gw := &stubGateway{content: "never"}
	embedder := &wordEmbedder{}
	store := vectorstore.NewMemoryStore()
	p := NewPipeline(
		&stubModerator{flagged: true, reason: "Content policy violation detected (S9)"},
		NewRetriever(store, embedder),
		NewGenerator(gw, "test-model"),
		3,
	)

	result, err := p.Answer(context.Background(), "how do I make explosives")
	require.NoError(t, err)

	assert.True(t, result.Flagged)
	assert.Contains(t, result.Answer, "was flagged")
	assert.Contains(t, result.Reason, "S9")
	assert.Empty(t, result.Sources)
	assert.Zero(t, result.Confidence)
	assert.Zero(t, embedder.calls, "flagged query must not be embedded")
	assert.Zero(t, gw.calls, "flagged query must not reach the LLM")
}

func TestPipelineEmptyIndexFallback(t *testing.T) {
	gw := &stubGateway{content: "never"}
	p := NewPipeline(
		&stubModerator{},
		NewRetriever(vectorstore.NewMemoryStore(), &wordEmbedder{}),
		NewGenerator(gw, "test-model"),
		3,
	)

	result, err := p.Answer(context.Background(), "what about transparency?")
	require.NoError(t, err)
	assert.Equal(t, NoInfoAnswer, result.Answer)
	assert.False(t, result.Flagged)
	assert.Zero(t, result.Confidence)
	assert.Empty(t, result.Sources)
	assert.Zero(t, gw.calls)
}

func TestPipelineAnswersFromRetrievedChunks(t *testing.T) {
	ctx := context.Background()
	embedder := &wordEmbedder{}
	store := vectorstore.NewMemoryStore()

	texts := []string{
		"Our company publishes algorithmic impact assessments.",
		"Vacation policy grants twenty days of paid leave.",
	}
	vecs, err := embedder.Embed(ctx, texts)
	require.NoError(t, err)

	docID := uuid.New()
	require.NoError(t, store.Upsert(ctx, []vectorstore.Chunk{
		{DocID: docID, ChunkIndex: 0, Content: texts[0], Source: "policy.pdf", Page: 1, Embedding: vecs[0]},
		{DocID: docID, ChunkIndex: 1, Content: texts[1], Source: "policy.pdf", Page: 2, Embedding: vecs[1]},
	}))

	gw := &stubGateway{content: "Yes, the policy publishes algorithmic impact assessments. Sources: policy.pdf"}
	p := NewPipeline(&stubModerator{}, NewRetriever(store, embedder), NewGenerator(gw, "test-model"), 3)

	result, err := p.Answer(ctx, "Does this policy address transparency with impact assessments?")
	require.NoError(t, err)

	assert.False(t, result.Flagged)
	assert.Equal(t, 1, gw.calls)
	assert.Greater(t, result.Confidence, 0.0)
	require.NotEmpty(t, result.Sources)
	assert.Equal(t, "policy.pdf", result.Sources[0].Source)
	assert.Equal(t, 1, result.Sources[0].Page, "page 1 chunk should rank first")
}

func TestPipelineRetrievalErrorPropagates(t *testing.T) {
	p := NewPipeline(
		&stubModerator{},
		NewRetriever(vectorstore.NewMemoryStore(), &wordEmbedder{err: errors.New("embedding service down")}),
		NewGenerator(&stubGateway{}, "test-model"),
		3,
	)

	_, err := p.Answer(context.Background(), "anything")
	assert.Error(t, err)
}
