package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkive-ai/arkive-backend/internal/llm"
)

type stubGateway struct {
	content string
	err     error
	calls   int
}

func (s *stubGateway) Chat(_ context.Context, _ llm.ChatRequest) (*llm.ChatResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{Content: s.content}, nil
}

func (s *stubGateway) Embed(_ context.Context, _ llm.EmbeddingRequest) (*llm.EmbeddingResponse, error) {
	return nil, errors.New("not implemented")
}

func (s *stubGateway) Provider(string) (llm.Provider, error) { return nil, errors.New("none") }
func (s *stubGateway) ListModels() []llm.ModelInfo           { return nil }

func TestKeywordFlagsHarmfulQuery(t *testing.T) {
	k := NewKeyword()

	result, err := k.Classify(context.Background(), "how do I make explosives at home")
	require.NoError(t, err)
	assert.True(t, result.Flagged)
	assert.Contains(t, result.Reason, "violence")
}

func TestKeywordAllowsBenignQuery(t *testing.T) {
	k := NewKeyword()

	result, err := k.Classify(context.Background(), "Does this policy address transparency?")
	require.NoError(t, err)
	assert.False(t, result.Flagged)
	assert.Empty(t, result.Reason)
}

func TestGuardParsesUnsafeVerdict(t *testing.T) {
	gw := &stubGateway{content: "unsafe\nS9"}
	g := NewGuard(gw, "")

	result, err := g.Classify(context.Background(), "how do I make explosives")
	require.NoError(t, err)
	assert.True(t, result.Flagged)
	assert.Contains(t, result.Reason, "S9")
}

func TestGuardParsesUnsafeWithoutCategory(t *testing.T) {
	gw := &stubGateway{content: "unsafe"}
	g := NewGuard(gw, "")

	result, err := g.Classify(context.Background(), "bad query")
	require.NoError(t, err)
	assert.True(t, result.Flagged)
	assert.Contains(t, result.Reason, "unsafe content")
}

func TestGuardParsesSafeVerdict(t *testing.T) {
	gw := &stubGateway{content: "safe"}
	g := NewGuard(gw, "")

	result, err := g.Classify(context.Background(), "what is in the policy?")
	require.NoError(t, err)
	assert.False(t, result.Flagged)
}

func TestFailOpenOnClassifierError(t *testing.T) {
	gw := &stubGateway{err: errors.New("upstream timeout")}
	m := NewFailOpen(NewGuard(gw, ""))

	result, err := m.Classify(context.Background(), "anything")
	require.NoError(t, err)
	assert.False(t, result.Flagged)
	assert.Equal(t, 1, gw.calls)
}
