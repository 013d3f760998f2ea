package ingest

import (
	"strings"
	"testing"
)

func TestBuildPDFResultWindowsLongPage(t *testing.T) {
	// 3000 runes on one page: windows at 0, 800, 1600, 2400.
	text := strings.Repeat("abcdefghij", 300)
	result := buildPDFResult([]pdfPage{{num: 1, text: text}}, 1, nil)

	if len(result.Chunks) != 4 {
		t.Fatalf("chunks = %d, want 4", len(result.Chunks))
	}
	for i, c := range result.Chunks {
		if n := len([]rune(c.Text)); n > chunkSize {
			t.Errorf("chunk %d has %d runes, want <= %d", i, n, chunkSize)
		}
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if c.Page != 1 {
			t.Errorf("chunk %d has page %d, want 1", i, c.Page)
		}
	}
	if result.NeedsOCR {
		t.Error("NeedsOCR = true for a text-heavy page")
	}
}

func TestBuildPDFResultIndexesAcrossPages(t *testing.T) {
	long := strings.Repeat("x", 1200)
	result := buildPDFResult([]pdfPage{
		{num: 1, text: long},
		{num: 2, text: "second page body text, plenty of characters here to count"},
	}, 2, nil)

	// Page 1 windows into two chunks, page 2 is one.
	if len(result.Chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(result.Chunks))
	}
	wantPages := []int{1, 1, 2}
	for i, c := range result.Chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if c.Page != wantPages[i] {
			t.Errorf("chunk %d has page %d, want %d", i, c.Page, wantPages[i])
		}
	}
}

func TestBuildPDFResultKeepsScannedPages(t *testing.T) {
	// Two short pages: the average triggers needs_ocr, but the text
	// still ingests instead of failing with no_text.
	result := buildPDFResult([]pdfPage{
		{num: 1, text: "INVOICE NO. 2024-001"},
		{num: 2, text: "TOTAL: USD 15,000"},
	}, 2, nil)

	if len(result.Chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(result.Chunks))
	}
	if !result.NeedsOCR {
		t.Error("NeedsOCR = false for a near-empty document")
	}
	found := false
	for _, w := range result.Warnings {
		if strings.HasPrefix(w, "needs_ocr:") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want a needs_ocr entry", result.Warnings)
	}
}

func TestBuildPDFResultDropsEmptyPages(t *testing.T) {
	result := buildPDFResult([]pdfPage{
		{num: 1, text: "   \n\t  "},
		{num: 2, text: strings.Repeat("가나다라마바사아자차", 12)},
	}, 2, nil)

	if len(result.Chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(result.Chunks))
	}
	if result.Chunks[0].Page != 2 {
		t.Errorf("page = %d, want 2", result.Chunks[0].Page)
	}
}

func TestBuildPDFResultCarriesWarnings(t *testing.T) {
	warnings := []string{"page 3: text extraction failed: broken stream"}
	result := buildPDFResult([]pdfPage{{num: 1, text: strings.Repeat("w", 200)}}, 3, warnings)

	if len(result.Warnings) == 0 || result.Warnings[0] != warnings[0] {
		t.Errorf("warnings = %v", result.Warnings)
	}
}
