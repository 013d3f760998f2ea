package ingest

import "strings"

const (
	chunkSize    = 1000
	chunkOverlap = 200
)

// Chunk is one retrievable slice of a parsed document.
type Chunk struct {
	Index int
	Page  int
	Text  string
}

// chunkText slides a fixed window over the text with overlap. Chunks are
// trimmed and empty ones dropped. Offsets are in runes so CJK documents
// chunk by character, not by byte.
func chunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = chunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = chunkOverlap
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	var chunks []string
	step := size - overlap
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			chunks = append(chunks, piece)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
