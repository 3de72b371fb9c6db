package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/arkive-ai/arkive-backend/internal/api/handlers"
	"github.com/arkive-ai/arkive-backend/internal/api/middleware"
	"github.com/arkive-ai/arkive-backend/internal/audit"
	"github.com/arkive-ai/arkive-backend/internal/cache"
	"github.com/arkive-ai/arkive-backend/internal/chat"
	"github.com/arkive-ai/arkive-backend/internal/compliance"
	"github.com/arkive-ai/arkive-backend/internal/config"
	"github.com/arkive-ai/arkive-backend/internal/embedding"
	"github.com/arkive-ai/arkive-backend/internal/ingest"
	"github.com/arkive-ai/arkive-backend/internal/llm"
	"github.com/arkive-ai/arkive-backend/internal/moderation"
	"github.com/arkive-ai/arkive-backend/internal/queue"
	"github.com/arkive-ai/arkive-backend/internal/rag"
	"github.com/arkive-ai/arkive-backend/internal/session"
	"github.com/arkive-ai/arkive-backend/internal/vectorstore"
	"github.com/arkive-ai/arkive-backend/pkg/chunker"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	llmGW llm.Gateway
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		llmGW: llm.NewGateway(cfg.LLM),
	}
}

// Ingestor builds the ingestion service with the same wiring the HTTP layer
// uses, for startup preload.
func (rt *Router) Ingestor() *ingest.Service {
	embedSvc := embedding.NewService(rt.llmGW, rt.cfg.LLM.EmbeddingModel, cache.NewCache(rt.redis))
	return ingest.NewService(
		ingest.NewPgDocumentStore(rt.db),
		vectorstore.NewPgVectorStore(rt.db),
		embedSvc,
		chunker.Options{ChunkSize: rt.cfg.RAG.ChunkSize, ChunkOverlap: rt.cfg.RAG.ChunkOverlap},
	)
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"http://localhost:5173", "http://localhost:3000"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Arkive AI is running!"}`))
	})

	// Initialize services
	redisCache := cache.NewCache(rt.redis)
	embedSvc := embedding.NewService(rt.llmGW, rt.cfg.LLM.EmbeddingModel, redisCache)
	vs := vectorstore.NewPgVectorStore(rt.db)
	auditSvc := audit.NewService(rt.db)
	queueClient := queue.NewClient(rt.cfg.Redis)

	ingestSvc := ingest.NewService(
		ingest.NewPgDocumentStore(rt.db),
		vs,
		embedSvc,
		chunker.Options{ChunkSize: rt.cfg.RAG.ChunkSize, ChunkOverlap: rt.cfg.RAG.ChunkOverlap},
	)

	var moderator moderation.Moderator
	if rt.cfg.LLM.ModerationMode == "keyword" {
		moderator = moderation.NewKeyword()
	} else {
		moderator = moderation.NewGuard(rt.llmGW, rt.cfg.LLM.ModerationModel)
	}
	moderator = moderation.NewFailOpen(moderator)

	pipeline := rag.NewPipeline(
		moderator,
		rag.NewRetriever(vs, embedSvc),
		rag.NewGenerator(rt.llmGW, rt.cfg.LLM.ChatModel),
		rt.cfg.RAG.TopK,
	)

	chatSvc := chat.NewService(session.NewStore(rt.db), pipeline, auditSvc)
	scorer := compliance.NewScorer(rt.llmGW, rt.cfg.LLM.ChatModel, ingestSvc, auditSvc)

	r.Route("/api", func(r chi.Router) {
		chatH := handlers.NewChatHandler(chatSvc)
		r.Route("/chat", func(r chi.Router) {
			r.Post("/", chatH.Chat)
			r.Get("/sessions", chatH.Sessions)
			r.Get("/history/{session_id}", chatH.History)
		})

		docH := handlers.NewDocumentHandler(ingestSvc, auditSvc, rt.cfg.Ingest.UploadDir)
		r.Route("/documents", func(r chi.Router) {
			r.Post("/upload", docH.Upload)
			r.Get("/", docH.List)
		})

		complianceH := handlers.NewComplianceHandler(scorer, rt.cfg.Ingest.UploadDir)
		r.Post("/compliance/check", complianceH.Check)

		auditH := handlers.NewAuditHandler(auditSvc)
		r.Get("/audit", auditH.List)

		llmH := handlers.NewLLMHandler(rt.llmGW)
		r.Get("/models", llmH.Models)

		adminH := handlers.NewAdminHandler(queueClient)
		r.Post("/admin/retention-sweep", adminH.TriggerRetentionSweep)
	})

	return r
}
