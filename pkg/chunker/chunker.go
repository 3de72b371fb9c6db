package chunker

import (
	"strings"
)

// Page is one page of extracted document text.
type Page struct {
	Number int
	Text   string
}

// Chunk is a fixed-size segment of a page. Index is assigned by global
// position across the whole document, not per page.
type Chunk struct {
	Text  string
	Page  int
	Index int
}

type Options struct {
	ChunkSize    int // target chunk size in characters
	ChunkOverlap int // overlap between consecutive chunks of the same page
}

func DefaultOptions() Options {
	return Options{
		ChunkSize:    500,
		ChunkOverlap: 50,
	}
}

// SplitPages splits each page into overlapping fixed-size segments while
// preserving page attribution. A page shorter than the chunk size yields
// exactly one chunk; no chunk is ever empty.
func SplitPages(pages []Page, opts Options) []Chunk {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 500
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = 0
	}

	var chunks []Chunk
	idx := 0

	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		for _, text := range splitFixed(page.Text, opts.ChunkSize, opts.ChunkOverlap) {
			chunks = append(chunks, Chunk{
				Text:  text,
				Page:  page.Number,
				Index: idx,
			})
			idx++
		}
	}

	return chunks
}

func splitFixed(text string, size, overlap int) []string {
	runes := []rune(text)

	step := size - overlap
	if step <= 0 {
		step = size
	}

	var parts []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}

	return parts
}
