package ingest

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/unicode"

	"github.com/tradeforge/tradeai-gateway/internal/apperr"
)

// parseHWP reads an HWP 5.0 document: an OLE compound file whose
// BodyText/Section* streams hold raw-deflate-compressed UTF-16LE text.
// A section that fails to decompress or decode logs a warning and is
// skipped; the document fails only when nothing at all comes out.
func parseHWP(data []byte) (*ParseResult, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: not an OLE container (HWPX is not supported): %v", apperr.ErrIngest, err)
	}

	type section struct {
		num  int
		data []byte
	}
	var sections []section
	result := &ParseResult{}

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if len(entry.Path) == 0 || entry.Path[0] != "BodyText" || !strings.HasPrefix(entry.Name, "Section") {
			continue
		}
		num, convErr := strconv.Atoi(strings.TrimPrefix(entry.Name, "Section"))
		if convErr != nil {
			continue
		}
		buf := make([]byte, entry.Size)
		n, readErr := io.ReadFull(entry, buf)
		if readErr != nil && readErr != io.ErrUnexpectedEOF {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: read failed: %v", entry.Name, readErr))
			continue
		}
		sections = append(sections, section{num: num, data: buf[:n]})
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].num < sections[j].num })

	var full strings.Builder
	for _, sec := range sections {
		text, secErr := decodeHWPSection(sec.data)
		if secErr != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Section%d: %v", sec.num, secErr))
			continue
		}
		full.WriteString(text)
		full.WriteString("\n")
	}

	text := strings.TrimSpace(full.String())
	if text == "" {
		return nil, fmt.Errorf("%w: no_text: hwp body text extraction produced nothing", apperr.ErrIngest)
	}
	for i, piece := range chunkText(text, chunkSize, chunkOverlap) {
		result.Chunks = append(result.Chunks, Chunk{Index: i, Page: 1, Text: piece})
	}
	return result, nil
}

func decodeHWPSection(data []byte) (string, error) {
	fr := flate.NewReader(bytes.NewReader(data))
	raw, err := io.ReadAll(fr)
	_ = fr.Close()
	if err != nil {
		// Some files store sections uncompressed.
		raw = data
	}
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	decoded, err := decoder.Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("utf-16le decode failed: %w", err)
	}
	return cleanHWPText(string(decoded)), nil
}

// cleanHWPText drops HWP's inline control records, keeping printable
// text and normal whitespace.
func cleanHWPText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			b.WriteRune('\n')
		case r < 0x20:
			b.WriteRune(' ')
		case r >= 0xE000 && r <= 0xF8FF:
			// private-use area, used for embedded controls
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
