package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
	"github.com/tradeforge/tradeai-gateway/internal/types"
)

type DocVersionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, version *types.DocVersion) error
	GetLatestByDocID(ctx context.Context, tx *gorm.DB, docID int64) (*types.DocVersion, error)
}

type docVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocVersionRepo(db *gorm.DB, baseLog *logger.Logger) DocVersionRepo {
	return &docVersionRepo{db: db, log: baseLog.With("repo", "doc_version")}
}

func (r *docVersionRepo) Create(ctx context.Context, tx *gorm.DB, version *types.DocVersion) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(version).Error
}

// GetLatestByDocID returns nil, nil when the document has no versions yet.
func (r *docVersionRepo) GetLatestByDocID(ctx context.Context, tx *gorm.DB, docID int64) (*types.DocVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var v types.DocVersion
	err := transaction.WithContext(ctx).
		Where("doc_id = ?", docID).
		Order("created_at DESC").
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
