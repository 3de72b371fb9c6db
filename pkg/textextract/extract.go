package textextract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is one page of extracted text, 1-based.
type Page struct {
	Number int
	Text   string
}

// ExtractFile loads a document from disk and returns its text paginated.
// Plain-text files count as a single page.
func ExtractFile(path string) ([]Page, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".txt", ".md":
		return extractTXT(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

func SupportedTypes() []string {
	return []string{".pdf", ".txt", ".md"}
}

func extractPDF(path string) ([]Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	var pages []Page
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no extractable text in %s", filepath.Base(path))
	}

	return pages, nil
}

func extractTXT(path string) ([]Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("empty file: %s", filepath.Base(path))
	}

	return []Page{{Number: 1, Text: text}}, nil
}
