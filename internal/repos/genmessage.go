package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
	"github.com/tradeforge/tradeai-gateway/internal/types"
)

type GenMessageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, msg *types.GenMessage) error
	ListRecentExcluding(ctx context.Context, tx *gorm.DB, genChatID, excludeID int64, limit int) ([]*types.GenMessage, error)
	CountByChatID(ctx context.Context, tx *gorm.DB, genChatID int64) (int64, error)
	ListLastN(ctx context.Context, tx *gorm.DB, genChatID int64, n int) ([]*types.GenMessage, error)
}

type genMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenMessageRepo(db *gorm.DB, baseLog *logger.Logger) GenMessageRepo {
	return &genMessageRepo{db: db, log: baseLog.With("repo", "gen_message")}
}

func (r *genMessageRepo) Create(ctx context.Context, tx *gorm.DB, msg *types.GenMessage) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(msg).Error
}

func (r *genMessageRepo) ListRecentExcluding(ctx context.Context, tx *gorm.DB, genChatID, excludeID int64, limit int) ([]*types.GenMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var msgs []*types.GenMessage
	err := transaction.WithContext(ctx).
		Where("gen_chat_id = ? AND gen_message_id <> ?", genChatID, excludeID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	reverseGenMessages(msgs)
	return msgs, nil
}

func (r *genMessageRepo) CountByChatID(ctx context.Context, tx *gorm.DB, genChatID int64) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).Model(&types.GenMessage{}).
		Where("gen_chat_id = ?", genChatID).
		Count(&n).Error
	return n, err
}

func (r *genMessageRepo) ListLastN(ctx context.Context, tx *gorm.DB, genChatID int64, n int) ([]*types.GenMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var msgs []*types.GenMessage
	err := transaction.WithContext(ctx).
		Where("gen_chat_id = ?", genChatID).
		Order("created_at DESC").
		Limit(n).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	reverseGenMessages(msgs)
	return msgs, nil
}

func reverseGenMessages(msgs []*types.GenMessage) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
