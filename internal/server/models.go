package server

// IngestResponse reports how much new content an ingest call indexed.
type IngestResponse struct {
	IndexedDocs   int `json:"indexed_docs"`
	IndexedChunks int `json:"indexed_chunks"`
}

// AskRequest is a question over the indexed corpus. K defaults to 4.
type AskRequest struct {
	Query string `json:"query" binding:"required"`
	K     *int   `json:"k"`
}

// Citation names a source document and section referenced by an answer.
type Citation struct {
	Title   string `json:"title"`
	Section string `json:"section,omitempty"`
}

// ChunkView is a retrieved chunk as returned to the caller.
type ChunkView struct {
	Title   string `json:"title"`
	Section string `json:"section,omitempty"`
	Text    string `json:"text"`
}

// AskMetrics carries the running latency averages alongside an answer.
type AskMetrics struct {
	RetrievalMs  float64 `json:"retrieval_ms"`
	GenerationMs float64 `json:"generation_ms"`
}

// AskResponse is the full answer payload: generated text, citations, the
// chunks behind them, and latency metrics.
type AskResponse struct {
	Query     string      `json:"query"`
	Answer    string      `json:"answer"`
	Citations []Citation  `json:"citations"`
	Chunks    []ChunkView `json:"chunks"`
	Metrics   AskMetrics  `json:"metrics"`
}

// MetricsResponse is the stats endpoint payload.
type MetricsResponse struct {
	TotalDocs              int     `json:"total_docs"`
	TotalChunks            int     `json:"total_chunks"`
	AvgRetrievalLatencyMs  float64 `json:"avg_retrieval_latency_ms"`
	AvgGenerationLatencyMs float64 `json:"avg_generation_latency_ms"`
	EmbeddingModel         string  `json:"embedding_model"`
	LLMModel               string  `json:"llm_model"`
	VectorStore            string  `json:"vector_store"`
	StoreFallbackReason    string  `json:"store_fallback_reason,omitempty"`
	LLMFallbackReason      string  `json:"llm_fallback_reason,omitempty"`
}
