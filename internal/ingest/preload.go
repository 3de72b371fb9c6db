package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
)

// PermanentDocs is the upload allow-list: only these filenames are stored as
// permanent when a user uploads them. Everything else expires with retention.
var PermanentDocs = map[string]bool{
	"unesco-ai.pdf": true,
	"oecd.pdf":      true,
}

// preloadDocs are the founding knowledge-base documents ingested at startup.
// A superset of the upload allow-list; all are permanent and never expired.
var preloadDocs = map[string]string{
	"unesco-ai.pdf": "UNESCO AI Ethics Recommendation",
	"oecd.pdf":      "OECD AI Principles",
	"eu-ai-act.pdf": "EU AI Act 2024",
}

// IsPermanentDoc reports whether an uploaded filename is on the permanent
// allow-list.
func IsPermanentDoc(filename string) bool {
	return PermanentDocs[filename]
}

// PreloadKnowledgeBase ingests the founding documents from dir. It is
// idempotent: a document whose chunks are already indexed is skipped, and a
// missing file is logged and skipped rather than failing startup.
func (s *Service) PreloadKnowledgeBase(ctx context.Context, dir string) error {
	for filename, title := range preloadDocs {
		path := filepath.Join(dir, filename)

		if _, err := os.Stat(path); err != nil {
			slog.Warn("preload: document not found, skipping", "filename", filename, "title", title)
			continue
		}

		count, err := s.vectors.CountBySource(ctx, filename)
		if err != nil {
			return err
		}
		if count > 0 {
			slog.Info("preload: already indexed", "filename", filename, "chunks", count)
			continue
		}

		result, err := s.IngestFile(ctx, path, "system", true)
		if err != nil {
			slog.Error("preload: ingest failed", "filename", filename, "error", err)
			continue
		}
		slog.Info("preload: ingested", "filename", filename, "title", title, "chunks", result.TotalChunks)
	}
	return nil
}
