package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/tradeforge/tradeai-gateway/internal/apperr"
)

// parseDOCX pulls paragraph text out of word/document.xml. A docx has no
// usable page boundaries, so the joined text is window-chunked and every
// chunk reports page 1.
func parseDOCX(data []byte) (*ParseResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open docx archive: %v", apperr.ErrIngest, err)
	}
	var docXML io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return nil, fmt.Errorf("%w: open document.xml: %v", apperr.ErrIngest, err)
			}
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("%w: docx has no word/document.xml", apperr.ErrIngest)
	}
	defer docXML.Close()

	text, err := extractDocxText(docXML)
	if err != nil {
		return nil, fmt.Errorf("%w: parse document.xml: %v", apperr.ErrIngest, err)
	}

	result := &ParseResult{}
	for i, piece := range chunkText(text, chunkSize, chunkOverlap) {
		result.Chunks = append(result.Chunks, Chunk{Index: i, Page: 1, Text: piece})
	}
	return result, nil
}

// extractDocxText walks the XML token stream, collecting w:t runs and
// joining paragraphs with newlines.
func extractDocxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var (
		b      strings.Builder
		inText bool
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}
