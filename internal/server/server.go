package server

import (
	"context"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/swipecast/vidgen/internal/catalog"
	"github.com/swipecast/vidgen/internal/config"
	"github.com/swipecast/vidgen/internal/llm"
	"github.com/swipecast/vidgen/internal/logger"
	"github.com/swipecast/vidgen/internal/pipeline"
	"github.com/swipecast/vidgen/internal/storage"
	"github.com/swipecast/vidgen/internal/vector"
	"github.com/swipecast/vidgen/internal/videogen"
)

type Server struct {
	log        *logger.Logger
	store      catalog.Store
	aggregator *pipeline.Aggregator
	dispatcher *pipeline.Dispatcher
	completion *pipeline.Completion
}

func New(log *logger.Logger) *Server {
	ctx := context.Background()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Warn("config file not loaded, relying on env overrides", "path", cfgPath, "error", err)
		cfg = &config.Config{}
		cfg.ApplyDefaults()
	}
	applyEnvOverrides(cfg)

	llmClient, embedder, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		log.Fatal("failed to initialize llm client", "error", err)
	}

	store, err := catalog.NewFirestoreStore(ctx, log, cfg.Firestore)
	if err != nil {
		log.Fatal("failed to initialize catalog store", "error", err)
	}

	objects, err := storage.NewBucketStore(ctx, log, cfg.Storage)
	if err != nil {
		log.Fatal("failed to initialize object storage", "error", err)
	}

	generator, err := videogen.NewReplicateGenerator(log, cfg.Replicate)
	if err != nil {
		log.Fatal("failed to initialize video generator", "error", err)
	}

	// The vector index is a best-effort collaborator; run without it rather
	// than refusing to start.
	index, err := vector.NewPineconeIndex(ctx, log, cfg.Pinecone)
	if err != nil {
		log.Warn("vector index unavailable, generated videos will not be indexed", "error", err)
		index = nil
	}

	publicBase := cfg.Server.PublicBaseURL

	return &Server{
		log:        log,
		store:      store,
		aggregator: pipeline.NewAggregator(log, store, llmClient, cfg.Prompts.AggregatorSystem, cfg.Generation.MaxDescriptions),
		dispatcher: pipeline.NewDispatcher(log, generator, publicBase),
		completion: pipeline.NewCompletion(log, store, objects, embedder, index,
			cfg.Storage.Prefix, cfg.Generation.MaxVideoBytes, cfg.Pinecone.Dimension),
	}
}

func applyEnvOverrides(cfg *config.Config) {
	setIfEnv(&cfg.LLM.Provider, "LLM_PROVIDER")
	setIfEnv(&cfg.LLM.Model, "LLM_MODEL")
	setIfEnv(&cfg.LLM.EmbeddingModel, "LLM_EMBEDDING_MODEL")
	setIfEnv(&cfg.LLM.APIKey, "LLM_API_KEY")
	setIfEnv(&cfg.LLM.APIKey, "OPENAI_API_KEY")
	setIfEnv(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setIfEnv(&cfg.Replicate.APIToken, "REPLICATE_API_TOKEN")
	setIfEnv(&cfg.Replicate.Model, "REPLICATE_MODEL")
	setIfEnv(&cfg.Pinecone.APIKey, "PINECONE_API_KEY")
	setIfEnv(&cfg.Pinecone.IndexName, "PINECONE_INDEX_NAME")
	setIfEnv(&cfg.Pinecone.IndexHost, "PINECONE_INDEX_HOST")
	setIfEnv(&cfg.Firestore.ProjectID, "FIRESTORE_PROJECT_ID")
	setIfEnv(&cfg.Firestore.ProjectID, "GOOGLE_CLOUD_PROJECT")
	setIfEnv(&cfg.Storage.Bucket, "STORAGE_BUCKET")
	setIfEnv(&cfg.Storage.PublicBaseURL, "STORAGE_PUBLIC_BASE_URL")
	setIfEnv(&cfg.Server.PublicBaseURL, "PUBLIC_BASE_URL")
	setIfEnv(&cfg.Server.Mode, "SERVER_MODE")
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()
	r.Use(requestID())

	r.GET("/healthz", s.Healthz)
	r.GET("/feed", s.Feed)
	r.POST("/generate", s.Generate)
	r.POST(pipeline.WebhookPath, s.GenerationWebhook)

	return r
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("request_id", uuid.NewString())
		c.Next()
	}
}

// reqLog scopes the server logger to the current request.
func (s *Server) reqLog(c *gin.Context) *logger.Logger {
	if id, ok := c.Get("request_id"); ok {
		return s.log.With("request_id", id)
	}
	return s.log
}

func parseLimit(raw string, def, max int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
