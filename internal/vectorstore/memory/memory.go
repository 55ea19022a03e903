// Package memory is the in-process vector store: a brute-force cosine scan
// over every stored vector. O(N*dim) per query, intentionally simple.
package memory

import (
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/vikneshkrishnan/ai-policy-helper/internal/domain"
)

// Store holds vectors and metadata behind one coarse lock. The hash set
// makes check-and-insert atomic, so concurrent upserts of the same content
// leave exactly one record.
type Store struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	metas     []domain.Metadata
	hashes    map[string]struct{}
}

func NewStore(dimension int) (*Store, error) {
	if dimension <= 0 {
		return nil, errors.New("invalid dimension")
	}
	return &Store{dimension: dimension, hashes: make(map[string]struct{})}, nil
}

// Upsert inserts each pair unless its hash is already present. Existing
// records are never overwritten.
func (s *Store) Upsert(vectors [][]float64, metas []domain.Metadata) error {
	if len(vectors) != len(metas) {
		return errors.New("vectors and metadata length mismatch")
	}
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range vectors {
		h := metas[i].Hash
		if h != "" {
			if _, ok := s.hashes[h]; ok {
				continue
			}
			s.hashes[h] = struct{}{}
		}
		s.vectors = append(s.vectors, v)
		s.metas = append(s.metas, metas[i])
	}
	return nil
}

// Search scans every stored vector and returns the top k by cosine
// similarity, best first. Ties keep insertion order. An empty store or
// non-positive k yields an empty result.
func (s *Store) Search(vector []float64, k int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if k <= 0 || len(s.vectors) == 0 {
		return nil, nil
	}
	results := make([]domain.SearchResult, len(s.vectors))
	for i, v := range s.vectors {
		results[i] = domain.SearchResult{Score: cosine(v, vector), Meta: s.metas[i]}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > len(results) {
		k = len(results)
	}
	out := make([]domain.SearchResult, k)
	copy(out, results[:k])
	return out, nil
}

// Len reports the stored record count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	return dot / (math.Sqrt(na)*(math.Sqrt(nb)+1e-9) + 1e-9)
}
