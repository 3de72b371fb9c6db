package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/arkive-ai/arkive-backend/internal/audit"
	"github.com/arkive-ai/arkive-backend/internal/ingest"
	"github.com/arkive-ai/arkive-backend/internal/models"
)

type DocumentHandler struct {
	svc       *ingest.Service
	audit     *audit.Service
	uploadDir string
}

func NewDocumentHandler(svc *ingest.Service, auditSvc *audit.Service, uploadDir string) *DocumentHandler {
	return &DocumentHandler{svc: svc, audit: auditSvc, uploadDir: uploadDir}
}

func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32MB max
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file required"})
		return
	}
	defer file.Close()

	userID := r.FormValue("user_id")
	if userID == "" {
		userID = "anonymous"
	}

	path, err := h.saveUpload(file, header.Filename)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	permanent := ingest.IsPermanentDoc(header.Filename)

	result, err := h.svc.IngestFile(r.Context(), path, userID, permanent)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	h.audit.Log(r.Context(), models.EventDocumentUpload, userID, map[string]any{
		"filename":     result.Filename,
		"doc_id":       result.DocID.String(),
		"total_chunks": result.TotalChunks,
		"is_permanent": result.IsPermanent,
	})

	label := "expires in 7 days"
	if result.IsPermanent {
		label = "permanent knowledge base"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      fmt.Sprintf("'%s' uploaded! (%s)", result.Filename, label),
		"doc_id":       result.DocID.String(),
		"total_chunks": result.TotalChunks,
		"is_permanent": result.IsPermanent,
	})
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.ListDocuments(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (h *DocumentHandler) saveUpload(src io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(h.uploadDir, filepath.Base(filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return path, nil
}
