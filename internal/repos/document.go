package repos

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
	"github.com/tradeforge/tradeai-gateway/internal/types"
)

type DocumentRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, docID int64) (*types.Document, error)
	ListSiblings(ctx context.Context, tx *gorm.DB, tradeID, excludeDocID int64) ([]*types.Document, error)
	UpdateUploadStatus(ctx context.Context, tx *gorm.DB, docID int64, status, errorMsg string) error
	SetVectorPointIDs(ctx context.Context, tx *gorm.DB, docID int64, pointIDs datatypes.JSON) error
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return &documentRepo{db: db, log: baseLog.With("repo", "document")}
}

func (r *documentRepo) GetByID(ctx context.Context, tx *gorm.DB, docID int64) (*types.Document, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var d types.Document
	if err := transaction.WithContext(ctx).First(&d, "doc_id = ?", docID).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ListSiblings returns the other documents under the same trade, ordered
// by workflow step so context sections come out in a stable order.
func (r *documentRepo) ListSiblings(ctx context.Context, tx *gorm.DB, tradeID, excludeDocID int64) ([]*types.Document, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var docs []*types.Document
	err := transaction.WithContext(ctx).
		Where("trade_id = ? AND doc_id <> ?", tradeID, excludeDocID).
		Order("array_position(ARRAY['offer','pi','contract','ci','pl']::text[], doc_type)").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepo) UpdateUploadStatus(ctx context.Context, tx *gorm.DB, docID int64, status, errorMsg string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Model(&types.Document{}).
		Where("doc_id = ?", docID).
		Updates(map[string]interface{}{"upload_status": status, "error_msg": errorMsg}).Error
}

func (r *documentRepo) SetVectorPointIDs(ctx context.Context, tx *gorm.DB, docID int64, pointIDs datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Model(&types.Document{}).
		Where("doc_id = ?", docID).
		Update("vector_point_ids", pointIDs).Error
}
