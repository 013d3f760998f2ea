package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
	"github.com/tradeforge/tradeai-gateway/internal/types"
)

type DocMessageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, msg *types.DocMessage) error
	// ListRecentExcluding returns the last `limit` messages for the
	// document, excluding the given message id, ascending by created_at.
	ListRecentExcluding(ctx context.Context, tx *gorm.DB, docID, excludeID int64, limit int) ([]*types.DocMessage, error)
	CountByDocID(ctx context.Context, tx *gorm.DB, docID int64) (int64, error)
	ListLastN(ctx context.Context, tx *gorm.DB, docID int64, n int) ([]*types.DocMessage, error)
}

type docMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocMessageRepo(db *gorm.DB, baseLog *logger.Logger) DocMessageRepo {
	return &docMessageRepo{db: db, log: baseLog.With("repo", "doc_message")}
}

func (r *docMessageRepo) Create(ctx context.Context, tx *gorm.DB, msg *types.DocMessage) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(msg).Error
}

func (r *docMessageRepo) ListRecentExcluding(ctx context.Context, tx *gorm.DB, docID, excludeID int64, limit int) ([]*types.DocMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var msgs []*types.DocMessage
	err := transaction.WithContext(ctx).
		Where("doc_id = ? AND message_id <> ?", docID, excludeID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	reverseDocMessages(msgs)
	return msgs, nil
}

func (r *docMessageRepo) CountByDocID(ctx context.Context, tx *gorm.DB, docID int64) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).Model(&types.DocMessage{}).
		Where("doc_id = ?", docID).
		Count(&n).Error
	return n, err
}

func (r *docMessageRepo) ListLastN(ctx context.Context, tx *gorm.DB, docID int64, n int) ([]*types.DocMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var msgs []*types.DocMessage
	err := transaction.WithContext(ctx).
		Where("doc_id = ?", docID).
		Order("created_at DESC").
		Limit(n).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	reverseDocMessages(msgs)
	return msgs, nil
}

func reverseDocMessages(msgs []*types.DocMessage) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
