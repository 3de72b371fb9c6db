package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/arkive-ai/arkive-backend/internal/compliance"
)

type ComplianceHandler struct {
	scorer    *compliance.Scorer
	uploadDir string
}

func NewComplianceHandler(scorer *compliance.Scorer, uploadDir string) *ComplianceHandler {
	return &ComplianceHandler{scorer: scorer, uploadDir: uploadDir}
}

// Check audits an uploaded policy document. The upload is written to a temp
// path and removed whatever happens.
func (h *ComplianceHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
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
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id required"})
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// Unique per request so concurrent checks of the same filename never
	// share (or remove) each other's file. The original name stays as the
	// suffix so extraction still sees the right extension.
	dst, err := os.CreateTemp(h.uploadDir, "temp_*_"+filepath.Base(header.Filename))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("save upload: %v", err)})
		return
	}
	tempPath := dst.Name()
	defer os.Remove(tempPath)

	_, err = io.Copy(dst, file)
	dst.Close()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("save upload: %v", err)})
		return
	}

	report, err := h.scorer.Check(r.Context(), tempPath, userID)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, report)
}
