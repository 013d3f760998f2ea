package ingest

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/tradeforge/tradeai-gateway/internal/apperr"
)

func docxArchive(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const sampleDocumentXML = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>COMMERCIAL INVOICE</w:t></w:r></w:p>
    <w:p><w:r><w:t>Buyer: </w:t></w:r><w:r><w:t>ACME Co., Ltd.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestParseDOCX(t *testing.T) {
	result, err := parseDOCX(docxArchive(t, sampleDocumentXML))
	if err != nil {
		t.Fatalf("parseDOCX: %v", err)
	}
	if len(result.Chunks) != 1 {
		t.Fatalf("chunks = %d", len(result.Chunks))
	}
	c := result.Chunks[0]
	if c.Page != 1 || c.Index != 0 {
		t.Errorf("chunk meta = %+v", c)
	}
	if !strings.Contains(c.Text, "COMMERCIAL INVOICE") {
		t.Errorf("text = %q", c.Text)
	}
	// Runs split across w:r elements join without extra separators.
	if !strings.Contains(c.Text, "Buyer: ACME Co., Ltd.") {
		t.Errorf("text = %q", c.Text)
	}
}

func TestParseDOCXMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("word/other.xml"); err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	_, err := parseDOCX(buf.Bytes())
	if !errors.Is(err, apperr.ErrIngest) {
		t.Errorf("err = %v", err)
	}
}

func TestParseDOCXNotAnArchive(t *testing.T) {
	_, err := parseDOCX([]byte("not a zip"))
	if !errors.Is(err, apperr.ErrIngest) {
		t.Errorf("err = %v", err)
	}
}

func TestExtractDocxTextParagraphBreaks(t *testing.T) {
	xmlBody := `<w:document xmlns:w="x"><w:body>` +
		`<w:p><w:r><w:t>first</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>second</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	text, err := extractDocxText(strings.NewReader(xmlBody))
	if err != nil {
		t.Fatalf("extractDocxText: %v", err)
	}
	if text != "first\nsecond" {
		t.Errorf("text = %q", text)
	}
}
