// Package service wires the embedder, vector store, and generator into the
// retrieval engine and owns the fallback policy: when an external backend
// cannot be constructed, the engine switches to the in-process variant once
// and records why.
package service

import (
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vikneshkrishnan/ai-policy-helper/internal/config"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/domain"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/embedding"
	embopenai "github.com/vikneshkrishnan/ai-policy-helper/internal/embedding/openai"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/generation"
	genopenai "github.com/vikneshkrishnan/ai-policy-helper/internal/generation/openai"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/metrics"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/vectorstore"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/vectorstore/memory"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/vectorstore/qdrant"
)

// Engine coordinates ingestion, retrieval, and generation over shared
// process-lifetime state.
type Engine struct {
	embedder  embedding.Embedder
	store     vectorstore.Storage
	generator generation.Generator
	metrics   *metrics.Collector
	logger    *zap.Logger

	storeName           string
	storeFallbackReason string
	llmFallbackReason   string
}

// NewEngine assembles the engine from configuration. Backend construction
// failures never propagate: the external store falls back to the in-process
// one and the hosted generator falls back to the stub, each with the reason
// recorded and visible through Stats.
func NewEngine(cfg *config.AppConfig, logger *zap.Logger) *Engine {
	e := &Engine{metrics: metrics.NewCollector(), logger: logger}
	e.embedder = e.buildEmbedder(cfg)
	e.store, e.storeName = e.buildStore(cfg, e.embedder.Dimension())
	e.generator = e.buildGenerator(cfg)
	logger.Info("engine assembled",
		zap.String("embedder", e.embedder.Name()),
		zap.String("vector_store", e.storeName),
		zap.String("generator", e.generator.Name()))
	return e
}

func (e *Engine) buildEmbedder(cfg *config.AppConfig) embedding.Embedder {
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		client, err := embopenai.NewClient(embopenai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err == nil {
			return client
		}
		e.logger.Warn("semantic embedder unavailable, using hash embedder", zap.Error(err))
	}
	return embedding.NewHashEmbedder(cfg.Embedder.Dimension)
}

func (e *Engine) buildStore(cfg *config.AppConfig, dimension int) (vectorstore.Storage, string) {
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant != nil {
		qcfg := qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		}
		if cfg.VectorStore.Qdrant.APIKeyEnv != "" {
			qcfg.APIKey = os.Getenv(cfg.VectorStore.Qdrant.APIKeyEnv)
		}
		store, err := qdrant.NewStore(qcfg, dimension)
		if err == nil {
			return store, "qdrant"
		}
		e.storeFallbackReason = err.Error()
		e.logger.Warn("qdrant unavailable, using in-process store", zap.Error(err))
	}
	store, _ := memory.NewStore(dimension)
	return store, "memory"
}

func (e *Engine) buildGenerator(cfg *config.AppConfig) generation.Generator {
	if cfg.Generator.Provider == "openai" {
		gcfg := genopenai.Config{}
		if cfg.Generator.OpenAI != nil {
			gcfg = genopenai.Config{
				BaseURL:   cfg.Generator.OpenAI.BaseURL,
				APIKeyEnv: cfg.Generator.OpenAI.APIKeyEnv,
				Model:     cfg.Generator.OpenAI.Model,
				Timeout:   time.Duration(cfg.Generator.OpenAI.TimeoutSecs) * time.Second,
			}
		}
		client, err := genopenai.NewClient(gcfg)
		if err == nil {
			return client
		}
		e.llmFallbackReason = err.Error()
		e.logger.Warn("hosted generator unavailable, using stub", zap.Error(err))
	}
	return generation.NewStubGenerator()
}

// Ingest embeds and upserts the chunks. The returned counts are the titles
// not seen before this call and the number of chunks submitted. Re-ingesting
// unchanged content is idempotent at the store level.
func (e *Engine) Ingest(chunks []domain.Chunk) (newDocs, newChunks int, err error) {
	vectors := make([][]float64, 0, len(chunks))
	metas := make([]domain.Metadata, 0, len(chunks))
	for _, ch := range chunks {
		vec, err := e.embedder.Embed(ch.Text)
		if err != nil {
			return 0, 0, err
		}
		vectors = append(vectors, vec)
		metas = append(metas, domain.Metadata{
			Hash:    domain.ContentHash(ch.Text),
			Title:   ch.Title,
			Section: ch.Section,
			Text:    ch.Text,
		})
	}
	if err := e.store.Upsert(vectors, metas); err != nil {
		return 0, 0, err
	}
	for _, ch := range chunks {
		if e.metrics.ObserveTitle(ch.Title) {
			newDocs++
		}
	}
	e.metrics.ObserveChunks(len(chunks))
	e.logger.Info("chunks ingested", zap.Int("new_docs", newDocs), zap.Int("chunks", len(chunks)))
	return newDocs, len(chunks), nil
}

// Retrieve embeds the query and returns up to k results, deduplicated by
// content hash, best score first. The store is asked for 2*k candidates to
// absorb hash duplicates. Elapsed embed+search time is recorded whatever
// the outcome.
func (e *Engine) Retrieve(query string, k int) ([]domain.SearchResult, error) {
	start := time.Now()
	defer func() {
		e.metrics.RecordRetrieval(time.Since(start))
	}()
	if k <= 0 {
		return nil, nil
	}
	vec, err := e.embedder.Embed(query)
	if err != nil {
		return nil, err
	}
	candidates, err := e.store.Search(vec, 2*k)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(candidates))
	unique := make([]domain.SearchResult, 0, k)
	for _, cand := range candidates {
		h := cand.Meta.Hash
		if h != "" {
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}
		}
		// hashless candidates are never deduplicated
		unique = append(unique, cand)
		if len(unique) >= k {
			break
		}
	}
	return unique, nil
}

// Generate produces an answer for the query from the retrieved contexts and
// records the elapsed time.
func (e *Engine) Generate(query string, contexts []domain.Metadata) (string, error) {
	start := time.Now()
	defer func() {
		e.metrics.RecordGeneration(time.Since(start))
	}()
	return e.generator.Generate(query, contexts)
}

// Stats reports corpus counters, the chosen backend variants with any
// fallback reasons, and average latencies.
func (e *Engine) Stats() domain.Stats {
	avgRetrieval, avgGeneration := e.metrics.Summary()
	return domain.Stats{
		TotalDocs:              e.metrics.TotalDocs(),
		TotalChunks:            e.metrics.TotalChunks(),
		EmbeddingModel:         e.embedder.Name(),
		GenerationModel:        e.generator.Name(),
		VectorStore:            e.storeName,
		StoreFallbackReason:    e.storeFallbackReason,
		LLMFallbackReason:      e.llmFallbackReason,
		AvgRetrievalLatencyMs:  avgRetrieval,
		AvgGenerationLatencyMs: avgGeneration,
	}
}
