package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
	"github.com/tradeforge/tradeai-gateway/internal/types"
)

type PostgresService struct {
	DB  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(dsn string, baseLog *logger.Logger) (*PostgresService, error) {
	log := baseLog.With("service", "postgres")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		// FKs are added explicitly below so cascade direction is under
		// our control, not gorm's migration heuristics.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	log.Info("connected to postgres")
	return &PostgresService{DB: gdb, log: log}, nil
}

func (p *PostgresService) AutoMigrateAll() error {
	if err := p.DB.AutoMigrate(
		&types.User{},
		&types.TradeFlow{},
		&types.Document{},
		&types.DocVersion{},
		&types.DocMessage{},
		&types.GenChat{},
		&types.GenMessage{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return p.addForeignKeys()
}

// addForeignKeys wires the cascade chain: deleting a trade removes its
// documents, versions, and messages; deleting a gen chat removes its
// messages. Vector-store cleanup is the memory service's job.
func (p *PostgresService) addForeignKeys() error {
	stmts := []string{
		`ALTER TABLE trade_flows DROP CONSTRAINT IF EXISTS fk_trade_flows_user;
		 ALTER TABLE trade_flows ADD CONSTRAINT fk_trade_flows_user
		 FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE`,
		`ALTER TABLE documents DROP CONSTRAINT IF EXISTS fk_documents_trade;
		 ALTER TABLE documents ADD CONSTRAINT fk_documents_trade
		 FOREIGN KEY (trade_id) REFERENCES trade_flows(trade_id) ON DELETE CASCADE`,
		`ALTER TABLE doc_versions DROP CONSTRAINT IF EXISTS fk_doc_versions_document;
		 ALTER TABLE doc_versions ADD CONSTRAINT fk_doc_versions_document
		 FOREIGN KEY (doc_id) REFERENCES documents(doc_id) ON DELETE CASCADE`,
		`ALTER TABLE doc_messages DROP CONSTRAINT IF EXISTS fk_doc_messages_document;
		 ALTER TABLE doc_messages ADD CONSTRAINT fk_doc_messages_document
		 FOREIGN KEY (doc_id) REFERENCES documents(doc_id) ON DELETE CASCADE`,
		`ALTER TABLE gen_chats DROP CONSTRAINT IF EXISTS fk_gen_chats_user;
		 ALTER TABLE gen_chats ADD CONSTRAINT fk_gen_chats_user
		 FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE`,
		`ALTER TABLE gen_messages DROP CONSTRAINT IF EXISTS fk_gen_messages_chat;
		 ALTER TABLE gen_messages ADD CONSTRAINT fk_gen_messages_chat
		 FOREIGN KEY (gen_chat_id) REFERENCES gen_chats(gen_chat_id) ON DELETE CASCADE`,
	}
	for _, s := range stmts {
		if err := p.DB.Exec(s).Error; err != nil {
			return fmt.Errorf("add foreign key: %w", err)
		}
	}
	p.log.Info("schema migrated")
	return nil
}

// Ping verifies connectivity, used by the health endpoint.
func (p *PostgresService) Ping() error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
