package ingest

import (
	"fmt"
	"path"
	"strings"

	"github.com/tradeforge/tradeai-gateway/internal/apperr"
)

// ParseResult carries the extracted chunks plus quality signals. NeedsOCR
// flags a PDF that is probably scanned; warnings record recoverable
// extraction problems.
type ParseResult struct {
	Chunks   []Chunk
	NeedsOCR bool
	Warnings []string
}

// parseDocument dispatches on the filename extension. Unsupported
// extensions are an ingest error, not a silent skip.
func parseDocument(data []byte, filename string) (*ParseResult, error) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		return parsePDF(data)
	case ".docx":
		return parseDOCX(data)
	case ".hwp":
		return parseHWP(data)
	default:
		return nil, fmt.Errorf("%w: unsupported file extension %q", apperr.ErrIngest, path.Ext(filename))
	}
}
