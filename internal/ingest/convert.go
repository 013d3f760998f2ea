package ingest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// convertToPDF shells out to LibreOffice to render a .docx/.hwp source
// as a PDF preview. Callers treat any error here as non-fatal.
func convertToPDF(ctx context.Context, sofficePath string, data []byte, filename string) ([]byte, error) {
	if strings.TrimSpace(sofficePath) == "" {
		return nil, fmt.Errorf("soffice path not configured")
	}
	tmpDir, err := os.MkdirTemp("", "preview-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	src := filepath.Join(tmpDir, filepath.Base(filename))
	if err := os.WriteFile(src, data, 0o600); err != nil {
		return nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()
	cmd := exec.CommandContext(cctx, sofficePath,
		"--headless", "--norestore", "--convert-to", "pdf", "--outdir", tmpDir, src)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("soffice convert: %v: %s", err, strings.TrimSpace(string(out)))
	}

	pdfPath := strings.TrimSuffix(src, filepath.Ext(src)) + ".pdf"
	pdfData, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("converted pdf missing: %w", err)
	}
	return pdfData, nil
}

// previewKey derives the deterministic object key for a document's
// converted preview.
func previewKey(docID int64) string {
	return fmt.Sprintf("documents/%d/preview.pdf", docID)
}
