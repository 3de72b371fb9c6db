package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/arkive-ai/arkive-backend/internal/embedding"
	"github.com/arkive-ai/arkive-backend/internal/models"
	"github.com/arkive-ai/arkive-backend/internal/vectorstore"
	"github.com/arkive-ai/arkive-backend/pkg/chunker"
	"github.com/arkive-ai/arkive-backend/pkg/textextract"
)

// DocumentStore persists document records alongside their vector chunks.
type DocumentStore interface {
	Insert(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.Document, error)
	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// Service turns files on disk into searchable chunks: extract, split, embed,
// upsert, all under one document id.
type Service struct {
	docs     DocumentStore
	vectors  vectorstore.VectorStore
	embedder embedding.Embedder
	opts     chunker.Options
}

func NewService(docs DocumentStore, vectors vectorstore.VectorStore, embedder embedding.Embedder, opts chunker.Options) *Service {
	return &Service{docs: docs, vectors: vectors, embedder: embedder, opts: opts}
}

// Result summarizes one completed ingestion.
type Result struct {
	DocID       uuid.UUID
	Filename    string
	TotalPages  int
	TotalChunks int
	IsPermanent bool
	Chunks      []vectorstore.Chunk
}

// IngestFile processes a single document end to end. On a failure after the
// document record exists, the record and any chunks already written are
// cleaned up best-effort so a retry starts from scratch.
func (s *Service) IngestFile(ctx context.Context, path, uploadedBy string, permanent bool) (*Result, error) {
	filename := filepath.Base(path)

	pages, err := textextract.ExtractFile(path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}

	chunkerPages := make([]chunker.Page, len(pages))
	for i, p := range pages {
		chunkerPages[i] = chunker.Page{Number: p.Number, Text: p.Text}
	}
	pieces := chunker.SplitPages(chunkerPages, s.opts)
	if len(pieces) == 0 {
		return nil, fmt.Errorf("no chunkable text in %s", filename)
	}

	doc := &models.Document{
		ID:          uuid.New(),
		Filename:    filename,
		UploadedBy:  uploadedBy,
		UploadedAt:  time.Now().UTC(),
		TotalPages:  len(pages),
		TotalChunks: len(pieces),
		IsPermanent: permanent,
		Status:      models.DocStatusIngested,
	}
	if err := s.docs.Insert(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert document record: %w", err)
	}

	texts := make([]string, len(pieces))
	for i, p := range pieces {
		texts[i] = p.Text
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		s.cleanup(ctx, doc.ID)
		return nil, fmt.Errorf("embed %s: %w", filename, err)
	}
	if len(vectors) != len(pieces) {
		s.cleanup(ctx, doc.ID)
		return nil, fmt.Errorf("embed %s: got %d vectors for %d chunks", filename, len(vectors), len(pieces))
	}

	chunks := make([]vectorstore.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = vectorstore.Chunk{
			DocID:       doc.ID,
			ChunkIndex:  p.Index,
			Content:     p.Text,
			Source:      filename,
			Page:        p.Page,
			IsPermanent: permanent,
			Embedding:   vectors[i],
			UploadedAt:  doc.UploadedAt,
		}
	}
	if err := s.vectors.Upsert(ctx, chunks); err != nil {
		s.cleanup(ctx, doc.ID)
		return nil, fmt.Errorf("store chunks for %s: %w", filename, err)
	}

	slog.Info("document ingested",
		"doc_id", doc.ID,
		"filename", filename,
		"pages", len(pages),
		"chunks", len(pieces),
		"permanent", permanent,
	)

	return &Result{
		DocID:       doc.ID,
		Filename:    filename,
		TotalPages:  len(pages),
		TotalChunks: len(pieces),
		IsPermanent: permanent,
		Chunks:      chunks,
	}, nil
}

// DeleteDocument removes a document's record and all of its chunks.
func (s *Service) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	if err := s.vectors.DeleteByDocument(ctx, id); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := s.docs.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document record: %w", err)
	}
	return nil
}

// ListDocuments returns every ingested document record.
func (s *Service) ListDocuments(ctx context.Context) ([]models.Document, error) {
	return s.docs.List(ctx)
}

// CountChunksBySource reports how many chunks a given source file has.
func (s *Service) CountChunksBySource(ctx context.Context, source string) (int, error) {
	return s.vectors.CountBySource(ctx, source)
}

func (s *Service) cleanup(ctx context.Context, id uuid.UUID) {
	if err := s.vectors.DeleteByDocument(ctx, id); err != nil {
		slog.Warn("ingest cleanup: delete chunks failed", "doc_id", id, "error", err)
	}
	if err := s.docs.Delete(ctx, id); err != nil {
		slog.Warn("ingest cleanup: delete document failed", "doc_id", id, "error", err)
	}
}
