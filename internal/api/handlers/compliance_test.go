package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkive-ai/arkive-backend/internal/compliance"
	"github.com/arkive-ai/arkive-backend/internal/ingest"
	"github.com/arkive-ai/arkive-backend/internal/llm"
	"github.com/arkive-ai/arkive-backend/internal/vectorstore"
)

type stubGateway struct {
	content string
	err     error
}

func (s *stubGateway) Chat(_ context.Context, _ llm.ChatRequest) (*llm.ChatResponse, error) {
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

// capturingIngestor records the path each check ingested from and whether the
// file existed at that moment.
type capturingIngestor struct {
	paths      []string
	fileExists []bool
}

func (f *capturingIngestor) IngestFile(_ context.Context, path, _ string, _ bool) (*ingest.Result, error) {
	f.paths = append(f.paths, path)
	_, err := os.Stat(path)
	f.fileExists = append(f.fileExists, err == nil)
	return &ingest.Result{
		DocID:    uuid.New(),
		Filename: filepath.Base(path),
		Chunks:   []vectorstore.Chunk{{Content: "policy text"}},
	}, nil
}

func (f *capturingIngestor) DeleteDocument(_ context.Context, _ uuid.UUID) error { return nil }

type noopAuditor struct{}

func (noopAuditor) Log(_ context.Context, _, _ string, _ map[string]any) {}

func complianceRequest(t *testing.T, filename string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("All automated decisions are explained to users."))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("user_id", "alice"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/compliance/check", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func tempFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "temp_*"))
	require.NoError(t, err)
	return matches
}

func newComplianceHandler(gw llm.Gateway, ingestor compliance.Ingestor, uploadDir string) *ComplianceHandler {
	scorer := compliance.NewScorer(gw, "test-model", ingestor, noopAuditor{})
	return NewComplianceHandler(scorer, uploadDir)
}

func TestComplianceCheckRemovesTempFile(t *testing.T) {
	uploadDir := t.TempDir()
	ingestor := &capturingIngestor{}
	h := newComplianceHandler(&stubGateway{content: `{"status": "fail", "note": "Not mentioned."}`}, ingestor, uploadDir)

	rec := httptest.NewRecorder()
	h.Check(rec, complianceRequest(t, "policy.pdf"))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, ingestor.paths, 1)
	assert.True(t, ingestor.fileExists[0], "file must exist while the check runs")
	assert.True(t, strings.HasSuffix(ingestor.paths[0], "policy.pdf"))
	assert.Empty(t, tempFiles(t, uploadDir), "temp file must be removed after a successful check")
}

func TestComplianceCheckRemovesTempFileOnScorerError(t *testing.T) {
	uploadDir := t.TempDir()
	h := newComplianceHandler(&stubGateway{err: errors.New("provider down")}, &capturingIngestor{}, uploadDir)

	rec := httptest.NewRecorder()
	h.Check(rec, complianceRequest(t, "policy.pdf"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Empty(t, tempFiles(t, uploadDir), "temp file must be removed even when scoring fails")
}

func TestComplianceCheckUsesUniqueTempPaths(t *testing.T) {
	uploadDir := t.TempDir()
	ingestor := &capturingIngestor{}
	h := newComplianceHandler(&stubGateway{content: `{"status": "pass", "note": "Covered."}`}, ingestor, uploadDir)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.Check(rec, complianceRequest(t, "policy.pdf"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	require.Len(t, ingestor.paths, 2)
	assert.NotEqual(t, ingestor.paths[0], ingestor.paths[1],
		"two checks of the same filename must not share a temp path")
}
