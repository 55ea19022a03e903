package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// Document is one heading-delimited section of a source file.
type Document struct {
	Title   string
	Section string
	Text    string
}

// Chunk is a token-bounded slice of a document section, the unit of indexing.
type Chunk struct {
	Title   string
	Section string
	Text    string
}

// Metadata is the payload stored alongside a vector. Hash is the SHA-256
// digest of Text and acts as the record's identity and dedup key.
type Metadata struct {
	Hash    string
	Title   string
	Section string
	Text    string
}

// SearchResult is a ranked candidate returned from a similarity query.
// Higher scores are more relevant.
type SearchResult struct {
	Score float64
	Meta  Metadata
}

// Stats is the engine's self-description exposed to the boundary layer.
type Stats struct {
	TotalDocs              int
	TotalChunks            int
	EmbeddingModel         string
	GenerationModel        string
	VectorStore            string
	StoreFallbackReason    string
	LLMFallbackReason      string
	AvgRetrievalLatencyMs  float64
	AvgGenerationLatencyMs float64
}

// ContentHash returns the hex SHA-256 digest of text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
