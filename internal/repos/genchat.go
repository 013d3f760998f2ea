package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
	"github.com/tradeforge/tradeai-gateway/internal/types"
)

type GenChatRepo interface {
	Create(ctx context.Context, tx *gorm.DB, chat *types.GenChat) error
	GetByID(ctx context.Context, tx *gorm.DB, genChatID int64) (*types.GenChat, error)
	Delete(ctx context.Context, tx *gorm.DB, genChatID int64) error
}

type genChatRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenChatRepo(db *gorm.DB, baseLog *logger.Logger) GenChatRepo {
	return &genChatRepo{db: db, log: baseLog.With("repo", "gen_chat")}
}

func (r *genChatRepo) Create(ctx context.Context, tx *gorm.DB, chat *types.GenChat) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(chat).Error
}

func (r *genChatRepo) GetByID(ctx context.Context, tx *gorm.DB, genChatID int64) (*types.GenChat, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var c types.GenChat
	if err := transaction.WithContext(ctx).First(&c, "gen_chat_id = ?", genChatID).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes the session; messages go with it through the FK cascade.
func (r *genChatRepo) Delete(ctx context.Context, tx *gorm.DB, genChatID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Delete(&types.GenChat{}, "gen_chat_id = ?", genChatID).Error
}
