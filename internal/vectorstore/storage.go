package vectorstore

import "github.com/vikneshkrishnan/ai-policy-helper/internal/domain"

// Storage persists (vector, metadata) pairs keyed by content hash and
// answers nearest-neighbor queries. Upsert must skip pairs whose hash is
// already stored so re-ingesting unchanged content is idempotent.
type Storage interface {
	Upsert(vectors [][]float64, metas []domain.Metadata) error
	Search(vector []float64, k int) ([]domain.SearchResult, error)
}
