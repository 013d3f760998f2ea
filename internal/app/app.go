package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/tradeforge/tradeai-gateway/internal/agent"
	"github.com/tradeforge/tradeai-gateway/internal/chat"
	"github.com/tradeforge/tradeai-gateway/internal/db"
	"github.com/tradeforge/tradeai-gateway/internal/handlers"
	"github.com/tradeforge/tradeai-gateway/internal/ingest"
	"github.com/tradeforge/tradeai-gateway/internal/memory"
	"github.com/tradeforge/tradeai-gateway/internal/platform/langfuse"
	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
	"github.com/tradeforge/tradeai-gateway/internal/platform/openai"
	"github.com/tradeforge/tradeai-gateway/internal/platform/qdrant"
	"github.com/tradeforge/tradeai-gateway/internal/platform/s3store"
	"github.com/tradeforge/tradeai-gateway/internal/platform/tavily"
	"github.com/tradeforge/tradeai-gateway/internal/repos"
)

// App is the dependency container built once at process start.
// Postgres and the router are mandatory; the AI-facing services degrade
// to nil when their credentials are missing, and the handlers answer
// accordingly.
type App struct {
	Log    *logger.Logger
	Cfg    Config
	DB     *db.PostgresService
	Router *gin.Engine
}

func New() (*App, error) {
	bootstrapLog, err := logger.New("local")
	if err != nil {
		return nil, fmt.Errorf("bootstrap logger: %w", err)
	}
	cfg := LoadConfig(bootstrapLog)
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	pg, err := db.NewPostgresService(cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	if err := pg.AutoMigrateAll(); err != nil {
		return nil, err
	}

	vectors := qdrant.NewClient(qdrant.Config{
		URL:    cfg.QdrantURL,
		Host:   cfg.QdrantHost,
		Port:   cfg.QdrantPort,
		APIKey: cfg.QdrantAPIKey,
	}, log)

	var llm openai.Client
	if cfg.OpenAIAPIKey != "" {
		llm, err = openai.NewClient(openai.Config{
			APIKey:         cfg.OpenAIAPIKey,
			BaseURL:        cfg.OpenAIBaseURL,
			Model:          cfg.AgentModel,
			EmbedModel:     cfg.EmbeddingModel,
			TimeoutSeconds: cfg.OpenAITimeoutSeconds,
		}, log)
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn("OPENAI_API_KEY unset, chat and ingest are disabled")
	}

	registry := langfuse.NewRegistry(langfuse.Config{
		PublicKey: cfg.LangfusePublicKey,
		SecretKey: cfg.LangfuseSecretKey,
		BaseURL:   cfg.LangfuseBaseURL,
	}, log)

	web := tavily.NewClient(cfg.TavilyAPIKey, log)

	objects, err := s3store.NewClient(context.Background(), s3store.Config{
		Region:          cfg.AWSRegion,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Endpoint:        cfg.S3Endpoint,
	}, log)
	if err != nil {
		return nil, err
	}

	// Repos.
	userRepo := repos.NewUserRepo(pg.DB, log)
	docRepo := repos.NewDocumentRepo(pg.DB, log)
	versionRepo := repos.NewDocVersionRepo(pg.DB, log)
	docMsgRepo := repos.NewDocMessageRepo(pg.DB, log)
	genChatRepo := repos.NewGenChatRepo(pg.DB, log)
	genMsgRepo := repos.NewGenMessageRepo(pg.DB, log)

	// Services. Memory and ingest need the LLM; a failed start leaves
	// them nil and the process keeps serving everything else.
	var mem memory.Service
	var ing ingest.Service
	var chatSvc *chat.Service
	if llm != nil {
		mem, err = memory.NewService(vectors, llm, cfg.CollectionMemory, log)
		if err != nil {
			log.Warn("memory service unavailable", "error", err)
			mem = nil
		}
		ing, err = ingest.NewService(vectors, llm, objects, cfg.SofficePath, log)
		if err != nil {
			log.Warn("ingest service unavailable", "error", err)
			ing = nil
		}
		tools := agent.NewToolset(vectors, llm, web, cfg.CollectionKnowledge, cfg.CollectionUserDocs, log)
		factory := agent.NewFactory(registry, tools, cfg.AgentModel, log)
		runner := agent.NewRunner(llm, log)
		chatSvc = chat.NewService(
			userRepo, docRepo, versionRepo, docMsgRepo, genChatRepo, genMsgRepo,
			mem, factory, runner, log,
		)
	}

	// Handlers.
	chatHandler := handlers.NewChatHandler(chatSvc, genChatRepo, mem, log)
	memoryHandler := handlers.NewMemoryHandler(mem, log)
	ingestHandler := handlers.NewIngestHandler(ing, docRepo, log)
	healthHandler := handlers.NewHealthHandler(pg, vectors, map[string]bool{
		"openai":   llm != nil,
		"langfuse": registry.Enabled(),
		"tavily":   web.Enabled(),
		"s3":       objects.Enabled(),
	}, log)

	router := buildRouter(log, chatHandler, memoryHandler, ingestHandler, healthHandler)

	return &App{Log: log, Cfg: cfg, DB: pg, Router: router}, nil
}

func (a *App) Run() error {
	addr := a.Cfg.ServerHost + ":" + a.Cfg.ServerPort
	a.Log.Info("server starting", "addr", addr)
	return a.Router.Run(addr)
}
