package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/tradeforge/tradeai-gateway/internal/apperr"
	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
	"github.com/tradeforge/tradeai-gateway/internal/platform/openai"
	"github.com/tradeforge/tradeai-gateway/internal/platform/qdrant"
)

type fakeVectorStore struct {
	upserted []qdrant.Point
	deletes  []map[string]any
	count    int
}

func (f *fakeVectorStore) EnsureCollection(ctx context.Context, collection string, dim int) error {
	return nil
}

func (f *fakeVectorStore) Upsert(ctx context.Context, collection string, points []qdrant.Point) error {
	f.upserted = append(f.upserted, points...)
	return nil
}

func (f *fakeVectorStore) Search(ctx context.Context, collection string, vector []float32, limit int, filter map[string]any) ([]qdrant.ScoredPoint, error) {
	return nil, nil
}

func (f *fakeVectorStore) Scroll(ctx context.Context, collection string, filter map[string]any, limit int) ([]qdrant.ScoredPoint, error) {
	return nil, nil
}

func (f *fakeVectorStore) DeleteByFilter(ctx context.Context, collection string, filter map[string]any) error {
	f.deletes = append(f.deletes, filter)
	return nil
}

func (f *fakeVectorStore) CountByFilter(ctx context.Context, collection string, filter map[string]any) (int, error) {
	return f.count, nil
}

func (f *fakeVectorStore) Ping(ctx context.Context) error { return nil }

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func (fakeEmbedder) EmbedDim() int { return 2 }

func (fakeEmbedder) GenerateText(ctx context.Context, system, user string) (string, error) {
	return "", nil
}

func (fakeEmbedder) StreamChatCompletion(ctx context.Context, model string, msgs []openai.ChatMessage, tools []openai.ToolDef, onDelta func(string) error) (*openai.StreamResult, error) {
	return &openai.StreamResult{}, nil
}

type fakeObjects struct {
	data map[string][]byte
}

func (f *fakeObjects) Download(ctx context.Context, key string) ([]byte, error) {
	if d, ok := f.data[key]; ok {
		return d, nil
	}
	return nil, errors.New("no such key")
}

func (f *fakeObjects) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	f.data[key] = data
	return nil
}

func (f *fakeObjects) Enabled() bool { return true }

func docxObject(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	xml := `<w:document xmlns:w="x"><w:body><w:p><w:r><w:t>Commercial invoice for 500 MT of steel plate, FOB Busan.</w:t></w:r></w:p></w:body></w:document>`
	if _, err := w.Write([]byte(xml)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func newIngestService(t *testing.T, store *fakeVectorStore, objects *fakeObjects) Service {
	t.Helper()
	svc, err := NewService(store, fakeEmbedder{}, objects, "", logger.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestIngestHappyPath(t *testing.T) {
	store := &fakeVectorStore{}
	objects := &fakeObjects{data: map[string][]byte{"uploads/42/invoice.docx": docxObject(t)}}
	svc := newIngestService(t, store, objects)

	result, err := svc.Ingest(context.Background(), 42, "uploads/42/invoice.docx", "user_docs")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.ChunksCount != 1 || len(result.PointIDs) != 1 {
		t.Fatalf("result = %+v", result)
	}
	if len(store.upserted) != 1 {
		t.Fatalf("upserted = %d", len(store.upserted))
	}
	p := store.upserted[0]
	if p.Payload["doc_id"] != int64(42) {
		t.Errorf("doc_id = %v", p.Payload["doc_id"])
	}
	if p.Payload["chunk_index"] != 0 {
		t.Errorf("chunk_index = %v", p.Payload["chunk_index"])
	}
	if p.Payload["source_object_key"] != "uploads/42/invoice.docx" {
		t.Errorf("source_object_key = %v", p.Payload["source_object_key"])
	}

	// Prior vectors cleared before the upsert.
	if len(store.deletes) != 1 || store.deletes[0]["doc_id"] != int64(42) {
		t.Errorf("deletes = %v", store.deletes)
	}
}

func TestIngestDeterministicPointIDs(t *testing.T) {
	objects := &fakeObjects{data: map[string][]byte{"k.docx": docxObject(t)}}

	first := &fakeVectorStore{}
	result1, err := newIngestService(t, first, objects).Ingest(context.Background(), 7, "k.docx", "c")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	second := &fakeVectorStore{}
	result2, err := newIngestService(t, second, objects).Ingest(context.Background(), 7, "k.docx", "c")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result1.PointIDs[0] != result2.PointIDs[0] {
		t.Errorf("point ids differ between runs: %q vs %q", result1.PointIDs[0], result2.PointIDs[0])
	}
}

func TestIngestValidation(t *testing.T) {
	svc := newIngestService(t, &fakeVectorStore{}, &fakeObjects{data: map[string][]byte{}})
	cases := []struct {
		docID     int64
		key, coll string
	}{
		{0, "k.pdf", "c"},
		{1, "", "c"},
		{1, "k.pdf", ""},
	}
	for _, tc := range cases {
		_, err := svc.Ingest(context.Background(), tc.docID, tc.key, tc.coll)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Ingest(%d,%q,%q) err = %v", tc.docID, tc.key, tc.coll, err)
		}
	}
}

func TestIngestUnsupportedExtension(t *testing.T) {
	objects := &fakeObjects{data: map[string][]byte{"file.txt": []byte("plain text")}}
	svc := newIngestService(t, &fakeVectorStore{}, objects)
	_, err := svc.Ingest(context.Background(), 1, "file.txt", "c")
	if !errors.Is(err, apperr.ErrIngest) {
		t.Errorf("err = %v", err)
	}
}

func TestDeleteDocumentReportsPriorCount(t *testing.T) {
	store := &fakeVectorStore{count: 4}
	svc := newIngestService(t, store, &fakeObjects{data: map[string][]byte{}})

	deleted, err := svc.DeleteDocument(context.Background(), 42, "user_docs")
	if err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if deleted != 4 {
		t.Errorf("deleted = %d", deleted)
	}
	if len(store.deletes) != 1 || store.deletes[0]["doc_id"] != int64(42) {
		t.Errorf("deletes = %v", store.deletes)
	}
}

func TestDeleteDocumentValidation(t *testing.T) {
	svc := newIngestService(t, &fakeVectorStore{}, &fakeObjects{data: map[string][]byte{}})
	if _, err := svc.DeleteDocument(context.Background(), 0, "c"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v", err)
	}
	if _, err := svc.DeleteDocument(context.Background(), 1, " "); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v", err)
	}
}
