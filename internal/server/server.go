// Package server is the HTTP boundary over the retrieval engine.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vikneshkrishnan/ai-policy-helper/internal/chunker"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/config"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/domain"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/ingest"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/service"
)

const defaultTopK = 4

// Server exposes the engine over /api routes.
type Server struct {
	engine   *service.Engine
	dataDir  string
	chunkCfg config.ChunkerConfig
	logger   *zap.Logger
}

func New(engine *service.Engine, cfg *config.AppConfig, logger *zap.Logger) *Server {
	return &Server{engine: engine, dataDir: cfg.DataDir, chunkCfg: cfg.Chunker, logger: logger}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), cors())
	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/metrics", s.handleMetrics)
	api.POST("/ingest", s.handleIngest)
	api.POST("/ask", s.handleAsk)
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleMetrics(c *gin.Context) {
	stats := s.engine.Stats()
	c.JSON(http.StatusOK, MetricsResponse{
		TotalDocs:              stats.TotalDocs,
		TotalChunks:            stats.TotalChunks,
		AvgRetrievalLatencyMs:  stats.AvgRetrievalLatencyMs,
		AvgGenerationLatencyMs: stats.AvgGenerationLatencyMs,
		EmbeddingModel:         stats.EmbeddingModel,
		LLMModel:               stats.GenerationModel,
		VectorStore:            stats.VectorStore,
		StoreFallbackReason:    stats.StoreFallbackReason,
		LLMFallbackReason:      stats.LLMFallbackReason,
	})
}

func (s *Server) handleIngest(c *gin.Context) {
	splitter, err := chunker.NewSplitter(s.chunkCfg.ChunkSize, s.chunkCfg.Overlap)
	if err != nil {
		s.logger.Error("invalid chunker configuration", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	docs, err := ingest.LoadDocuments(s.dataDir)
	if err != nil {
		s.logger.Error("loading documents failed", zap.String("dir", s.dataDir), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	chunks := ingest.BuildChunks(docs, splitter)
	newDocs, newChunks, err := s.engine.Ingest(chunks)
	if err != nil {
		s.logger.Error("ingestion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.logger.Info("ingestion complete",
		zap.Int("sections", len(docs)),
		zap.Int("indexed_docs", newDocs),
		zap.Int("indexed_chunks", newChunks))
	c.JSON(http.StatusOK, IngestResponse{IndexedDocs: newDocs, IndexedChunks: newChunks})
}

func (s *Server) handleAsk(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	k := defaultTopK
	if req.K != nil {
		k = *req.K
	}
	results, err := s.engine.Retrieve(req.Query, k)
	if err != nil {
		s.logger.Error("retrieval failed", zap.String("query", req.Query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	contexts := make([]domain.Metadata, 0, len(results))
	for _, r := range results {
		contexts = append(contexts, r.Meta)
	}
	answer, err := s.engine.Generate(req.Query, contexts)
	if err != nil {
		s.logger.Error("generation failed", zap.String("query", req.Query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	stats := s.engine.Stats()
	resp := AskResponse{
		Query:     req.Query,
		Answer:    answer,
		Citations: make([]Citation, 0, len(contexts)),
		Chunks:    make([]ChunkView, 0, len(contexts)),
		Metrics: AskMetrics{
			RetrievalMs:  stats.AvgRetrievalLatencyMs,
			GenerationMs: stats.AvgGenerationLatencyMs,
		},
	}
	for _, ctx := range contexts {
		resp.Citations = append(resp.Citations, Citation{Title: ctx.Title, Section: ctx.Section})
		resp.Chunks = append(resp.Chunks, ChunkView{Title: ctx.Title, Section: ctx.Section, Text: ctx.Text})
	}
	s.logger.Info("question answered",
		zap.String("query", req.Query),
		zap.Int("contexts", len(contexts)),
		zap.Int("answer_chars", len(answer)))
	c.JSON(http.StatusOK, resp)
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
