package app

import (
	"github.com/tradeforge/tradeai-gateway/internal/platform/envutil"
	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
)

// Config is the flat process configuration, loaded once at startup.
// Optional credentials left empty disable the matching feature instead
// of failing the boot.
type Config struct {
	ServerHost string
	ServerPort string
	LogMode    string

	DatabaseURL string

	OpenAIAPIKey         string
	OpenAIBaseURL        string
	AgentModel           string
	EmbeddingModel       string
	OpenAITimeoutSeconds int

	QdrantURL    string
	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string

	LangfusePublicKey string
	LangfuseSecretKey string
	LangfuseBaseURL   string

	TavilyAPIKey string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3Bucket           string
	S3Endpoint         string

	CollectionKnowledge string
	CollectionUserDocs  string
	CollectionMemory    string

	SofficePath string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		ServerHost: envutil.GetEnv("SERVER_HOST", "0.0.0.0", log),
		ServerPort: envutil.GetEnv("SERVER_PORT", "8001", log),
		LogMode:    envutil.GetEnv("LOG_MODE", "local", log),

		DatabaseURL: envutil.GetEnv("DATABASE_URL",
			"host=localhost user=postgres password=postgres dbname=tradeai port=5432 sslmode=disable", log),

		OpenAIAPIKey:         envutil.GetEnv("OPENAI_API_KEY", "", nil),
		OpenAIBaseURL:        envutil.GetEnv("OPENAI_BASE_URL", "", nil),
		AgentModel:           envutil.GetEnv("AGENT_MODEL", "gpt-4o", log),
		EmbeddingModel:       envutil.GetEnv("EMBEDDING_MODEL", "text-embedding-3-large", log),
		OpenAITimeoutSeconds: envutil.GetEnvAsInt("OPENAI_TIMEOUT_SECONDS", 120, log),

		QdrantURL:    envutil.GetEnv("QDRANT_URL", "", nil),
		QdrantHost:   envutil.GetEnv("QDRANT_HOST", "localhost", log),
		QdrantPort:   envutil.GetEnvAsInt("QDRANT_PORT", 6333, log),
		QdrantAPIKey: envutil.GetEnv("QDRANT_API_KEY", "", nil),

		LangfusePublicKey: envutil.GetEnv("LANGFUSE_PUBLIC_KEY", "", nil),
		LangfuseSecretKey: envutil.GetEnv("LANGFUSE_SECRET_KEY", "", nil),
		LangfuseBaseURL:   envutil.GetEnv("LANGFUSE_BASE_URL", "", nil),

		TavilyAPIKey: envutil.GetEnv("TAVILY_API_KEY", "", nil),

		AWSRegion:          envutil.GetEnv("AWS_REGION", "ap-northeast-2", log),
		AWSAccessKeyID:     envutil.GetEnv("AWS_ACCESS_KEY_ID", "", nil),
		AWSSecretAccessKey: envutil.GetEnv("AWS_SECRET_ACCESS_KEY", "", nil),
		S3Bucket:           envutil.GetEnv("S3_BUCKET", "", nil),
		S3Endpoint:         envutil.GetEnv("S3_ENDPOINT", "", nil),

		CollectionKnowledge: envutil.GetEnv("COLLECTION_KNOWLEDGE", "collection_trade", log),
		CollectionUserDocs:  envutil.GetEnv("COLLECTION_USER_DOCS", "collection_trade_user_documents", log),
		CollectionMemory:    envutil.GetEnv("COLLECTION_MEMORY", "collection_trade_memory", log),

		SofficePath: envutil.GetEnv("SOFFICE_PATH", "", nil),
	}
}
