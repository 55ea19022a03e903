// Package qdrant is the external-service vector store, a thin REST client
// over Qdrant's collections API.
package qdrant

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/vikneshkrishnan/ai-policy-helper/internal/domain"
)

// Store talks to one Qdrant collection configured for cosine distance.
type Store struct {
	client     *resty.Client
	collection string
	dimension  int
}

// Config contains connection details for a Qdrant instance.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewStore builds the client and ensures the collection exists with the
// given vector size. A construction error here is the caller's cue to fall
// back to the in-process store.
func NewStore(cfg Config, dimension int) (*Store, error) {
	if dimension <= 0 {
		return nil, errors.New("invalid dimension")
	}
	if cfg.Collection == "" {
		return nil, errors.New("collection name required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("api-key", cfg.APIKey)
	}
	s := &Store{client: client, collection: cfg.Collection, dimension: dimension}
	if err := s.ensureCollection(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureCollection() error {
	resp, err := s.client.R().Get("/collections/" + s.collection)
	if err != nil {
		return err
	}
	if resp.IsSuccess() {
		return nil
	}
	resp, err = s.client.R().
		SetBody(map[string]any{
			"vectors": map[string]any{
				"size":     s.dimension,
				"distance": "Cosine",
			},
		}).
		Put("/collections/" + s.collection)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("create collection %s: %s", s.collection, resp.Status())
	}
	return nil
}

// pointID maps a content hash to the fixed numeric identifier Qdrant stores,
// so the service itself enforces record identity.
func pointID(hash string) (uint64, error) {
	if len(hash) < 16 {
		return 0, fmt.Errorf("hash too short: %q", hash)
	}
	return strconv.ParseUint(hash[:16], 16, 64)
}

// Upsert writes each pair under its hash-derived id, probing for existing
// points first. A failed probe does not block the write: the duplicate check
// fails open, the write does not.
func (s *Store) Upsert(vectors [][]float64, metas []domain.Metadata) error {
	if len(vectors) != len(metas) {
		return errors.New("vectors and metadata length mismatch")
	}
	var points []map[string]any
	for i, meta := range metas {
		if meta.Hash == "" {
			continue
		}
		id, err := pointID(meta.Hash)
		if err != nil {
			return err
		}
		if s.pointExists(id) {
			continue
		}
		points = append(points, map[string]any{
			"id":     id,
			"vector": vectors[i],
			"payload": map[string]any{
				"hash":    meta.Hash,
				"title":   meta.Title,
				"section": meta.Section,
				"text":    meta.Text,
			},
		})
	}
	if len(points) == 0 {
		return nil
	}
	resp, err := s.client.R().
		SetBody(map[string]any{"points": points}).
		SetQueryParam("wait", "true").
		Put("/collections/" + s.collection + "/points")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("qdrant upsert failed: %s", resp.Status())
	}
	return nil
}

func (s *Store) pointExists(id uint64) bool {
	var out struct {
		Result []struct {
			ID any `json:"id"`
		} `json:"result"`
	}
	resp, err := s.client.R().
		SetBody(map[string]any{"ids": []uint64{id}}).
		SetResult(&out).
		Post("/collections/" + s.collection + "/points")
	if err != nil || resp.IsError() {
		return false
	}
	return len(out.Result) > 0
}

// Search runs a similarity query and maps payloads back into metadata.
// Scores are whatever Qdrant computes for the collection's cosine distance.
func (s *Store) Search(vector []float64, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}
	var out struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	resp, err := s.client.R().
		SetBody(map[string]any{
			"vector":       vector,
			"limit":        k,
			"with_payload": true,
		}).
		SetResult(&out).
		Post("/collections/" + s.collection + "/points/search")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("qdrant search failed: %s", resp.Status())
	}
	results := make([]domain.SearchResult, 0, len(out.Result))
	for _, r := range out.Result {
		meta := domain.Metadata{}
		if v, ok := r.Payload["hash"].(string); ok {
			meta.Hash = v
		}
		if v, ok := r.Payload["title"].(string); ok {
			meta.Title = v
		}
		if v, ok := r.Payload["section"].(string); ok {
			meta.Section = v
		}
		if v, ok := r.Payload["text"].(string); ok {
			meta.Text = v
		}
		results = append(results, domain.SearchResult{Score: r.Score, Meta: meta})
	}
	return results, nil
}
