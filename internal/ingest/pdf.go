package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/tradeforge/tradeai-gateway/internal/apperr"
)

// Documents averaging fewer characters per page than this are treated
// as scanned.
const minCharsPerPage = 50

type pdfPage struct {
	num  int
	text string
}

// parsePDF extracts text page by page; pages whose objects are broken
// log a warning and drop out. Windowing and the scanned-document check
// happen in buildPDFResult.
func parsePDF(data []byte) (*ParseResult, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %v", apperr.ErrIngest, err)
	}
	numPages := reader.NumPage()
	var (
		pages    []pdfPage
		warnings []string
	)
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			warnings = append(warnings, fmt.Sprintf("page %d: missing page object", pageNum))
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: text extraction failed: %v", pageNum, err))
			continue
		}
		pages = append(pages, pdfPage{num: pageNum, text: text})
	}
	return buildPDFResult(pages, numPages, warnings), nil
}

// buildPDFResult windows each page's text so a long page never becomes
// one oversized chunk, with chunk indexes running across pages. Pages
// with any text at all are kept; a near-empty average flags the document
// needs_ocr but it still ingests with whatever text came out.
func buildPDFResult(pages []pdfPage, numPages int, warnings []string) *ParseResult {
	result := &ParseResult{Warnings: warnings}
	totalChars := 0
	index := 0
	for _, p := range pages {
		text := strings.TrimSpace(p.text)
		if text == "" {
			continue
		}
		totalChars += len([]rune(text))
		for _, piece := range chunkText(text, chunkSize, chunkOverlap) {
			result.Chunks = append(result.Chunks, Chunk{Index: index, Page: p.num, Text: piece})
			index++
		}
	}
	if numPages > 0 && totalChars/numPages < minCharsPerPage {
		result.NeedsOCR = true
		result.Warnings = append(result.Warnings, "needs_ocr: average characters per page below threshold, document is likely scanned")
	}
	return result
}
