package ingest

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/tradeforge/tradeai-gateway/internal/apperr"
	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
	"github.com/tradeforge/tradeai-gateway/internal/platform/openai"
	"github.com/tradeforge/tradeai-gateway/internal/platform/qdrant"
	"github.com/tradeforge/tradeai-gateway/internal/platform/s3store"
)

// Result summarizes one ingest run.
type Result struct {
	ChunksCount int
	PointIDs    []string
	NeedsOCR    bool
	Warnings    []string
}

type Service interface {
	Ingest(ctx context.Context, docID int64, objectKey, collection string) (*Result, error)
	DeleteDocument(ctx context.Context, docID int64, collection string) (int, error)
}

type service struct {
	log         *logger.Logger
	store       qdrant.Client
	llm         openai.Client
	objects     s3store.Client
	sofficePath string
}

func NewService(store qdrant.Client, llm openai.Client, objects s3store.Client, sofficePath string, baseLog *logger.Logger) (Service, error) {
	if store == nil || llm == nil {
		return nil, fmt.Errorf("%w: ingest requires vector store and llm clients", apperr.ErrConfig)
	}
	return &service{
		log:         baseLog.With("service", "ingest"),
		store:       store,
		llm:         llm,
		objects:     objects,
		sofficePath: sofficePath,
	}, nil
}

// Ingest materializes one uploaded document into retrievable chunks:
// download, parse, chunk, embed in one batch, upsert. Prior vectors for
// the doc are removed first so a re-run cannot duplicate chunks.
func (s *service) Ingest(ctx context.Context, docID int64, objectKey, collection string) (*Result, error) {
	if docID <= 0 || strings.TrimSpace(objectKey) == "" || strings.TrimSpace(collection) == "" {
		return nil, fmt.Errorf("%w: doc_id, s3_key and collection_name are required", apperr.ErrValidation)
	}
	if s.objects == nil || !s.objects.Enabled() {
		return nil, fmt.Errorf("%w: object store not configured", apperr.ErrConfig)
	}

	data, err := s.objects.Download(ctx, objectKey)
	if err != nil {
		return nil, err
	}

	parsed, err := parseDocument(data, objectKey)
	if err != nil {
		return nil, err
	}
	for _, w := range parsed.Warnings {
		s.log.Warn("ingest warning", "doc_id", docID, "key", objectKey, "warning", w)
	}
	if len(parsed.Chunks) == 0 {
		return nil, fmt.Errorf("%w: no_text: nothing extractable in %q", apperr.ErrIngest, objectKey)
	}

	if err := s.store.EnsureCollection(ctx, collection, s.llm.EmbedDim()); err != nil {
		return nil, err
	}
	// Idempotency: clear any vectors from a previous run of this doc.
	if err := s.store.DeleteByFilter(ctx, collection, map[string]any{"doc_id": docID}); err != nil {
		return nil, err
	}

	texts := make([]string, len(parsed.Chunks))
	for i, c := range parsed.Chunks {
		texts[i] = c.Text
	}
	vectors, err := s.llm.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embed chunks: %v", apperr.ErrUpstream, err)
	}

	points := make([]qdrant.Point, len(parsed.Chunks))
	pointIDs := make([]string, len(parsed.Chunks))
	for i, c := range parsed.Chunks {
		id := qdrant.PointID("chunk", fmt.Sprint(docID), fmt.Sprint(c.Index))
		payload := map[string]any{
			"doc_id":            docID,
			"chunk_index":       c.Index,
			"text":              c.Text,
			"source_object_key": objectKey,
		}
		if c.Page > 0 {
			payload["page"] = c.Page
		}
		points[i] = qdrant.Point{ID: id, Vector: vectors[i], Payload: payload}
		pointIDs[i] = id
	}
	if err := s.store.Upsert(ctx, collection, points); err != nil {
		return nil, err
	}

	s.maybeUploadPreview(ctx, docID, objectKey, data)

	s.log.Info("document ingested",
		"doc_id", docID, "key", objectKey, "collection", collection,
		"chunks", len(points), "needs_ocr", parsed.NeedsOCR)
	return &Result{
		ChunksCount: len(points),
		PointIDs:    pointIDs,
		NeedsOCR:    parsed.NeedsOCR,
		Warnings:    parsed.Warnings,
	}, nil
}

// maybeUploadPreview renders office formats to a PDF preview on a
// deterministic key. Strictly best-effort.
func (s *service) maybeUploadPreview(ctx context.Context, docID int64, objectKey string, data []byte) {
	ext := strings.ToLower(path.Ext(objectKey))
	if ext != ".docx" && ext != ".hwp" {
		return
	}
	if s.sofficePath == "" || s.objects == nil || !s.objects.Enabled() {
		return
	}
	pdfData, err := convertToPDF(ctx, s.sofficePath, data, path.Base(objectKey))
	if err != nil {
		s.log.Warn("preview conversion failed", "doc_id", docID, "error", err)
		return
	}
	if err := s.objects.Upload(ctx, previewKey(docID), pdfData, "application/pdf"); err != nil {
		s.log.Warn("preview upload failed", "doc_id", docID, "error", err)
		return
	}
	s.log.Info("preview uploaded", "doc_id", docID, "key", previewKey(docID))
}

// DeleteDocument removes every chunk for the doc via payload filter and
// reports how many were there beforehand.
func (s *service) DeleteDocument(ctx context.Context, docID int64, collection string) (int, error) {
	if docID <= 0 || strings.TrimSpace(collection) == "" {
		return 0, fmt.Errorf("%w: doc_id and collection_name are required", apperr.ErrValidation)
	}
	filter := map[string]any{"doc_id": docID}
	count, err := s.store.CountByFilter(ctx, collection, filter)
	if err != nil {
		s.log.Warn("chunk count failed before delete", "doc_id", docID, "error", err)
		count = 0
	}
	if err := s.store.DeleteByFilter(ctx, collection, filter); err != nil {
		return 0, err
	}
	s.log.Info("document chunks deleted", "doc_id", docID, "collection", collection, "count", count)
	return count, nil
}
