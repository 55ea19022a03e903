package qdrant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vikneshkrishnan/ai-policy-helper/internal/domain"
)

func TestPointID(t *testing.T) {
	id, err := pointID("00000000000000ff" + strings.Repeat("0", 48))
	require.NoError(t, err)
	assert.Equal(t, uint64(0xff), id)

	_, err = pointID("short")
	assert.Error(t, err)
}

// fakeQdrant mimics the small slice of the Qdrant REST API the store uses.
type fakeQdrant struct {
	collections map[string]bool
	points      map[uint64]map[string]any
	upserts     int
}

func newFakeQdrant() *fakeQdrant {
	return &fakeQdrant{collections: map[string]bool{}, points: map[uint64]map[string]any{}}
}

func (f *fakeQdrant) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		if !f.collections[r.PathValue("name")] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"result":{}}`))
	})
	mux.HandleFunc("PUT /collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		f.collections[r.PathValue("name")] = true
		_, _ = w.Write([]byte(`{"result":true}`))
	})
	mux.HandleFunc("POST /collections/{name}/points", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs []uint64 `json:"ids"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		var result []map[string]any
		for _, id := range req.IDs {
			if p, ok := f.points[id]; ok {
				result = append(result, map[string]any{"id": id, "payload": p})
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
	})
	mux.HandleFunc("PUT /collections/{name}/points", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Points []struct {
				ID      uint64         `json:"id"`
				Payload map[string]any `json:"payload"`
			} `json:"points"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, p := range req.Points {
			f.points[p.ID] = p.Payload
		}
		f.upserts++
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"status": "completed"}})
	})
	mux.HandleFunc("POST /collections/{name}/points/search", func(w http.ResponseWriter, r *http.Request) {
		var result []map[string]any
		for _, p := range f.points {
			result = append(result, map[string]any{"score": 0.9, "payload": p})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
	})
	// Qdrant responds with a JSON content type; resty only unmarshals
	// SetResult targets when the response advertises JSON.
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		mux.ServeHTTP(w, r)
	})
}

func TestNewStoreProvisionsCollection(t *testing.T) {
	fake := newFakeQdrant()
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	_, err := NewStore(Config{URL: srv.URL, Collection: "policy_docs"}, 4)
	require.NoError(t, err)
	assert.True(t, fake.collections["policy_docs"])
}

func TestNewStoreUnreachable(t *testing.T) {
	_, err := NewStore(Config{URL: "http://127.0.0.1:1", Collection: "policy_docs"}, 4)
	assert.Error(t, err)
}

func TestUpsertSkipsExistingPoints(t *testing.T) {
	fake := newFakeQdrant()
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	store, err := NewStore(Config{URL: srv.URL, Collection: "policy_docs"}, 2)
	require.NoError(t, err)

	meta := domain.Metadata{Hash: domain.ContentHash("chunk text"), Title: "Doc.md", Text: "chunk text"}
	vec := [][]float64{{1, 0}}
	require.NoError(t, store.Upsert(vec, []domain.Metadata{meta}))
	require.NoError(t, store.Upsert(vec, []domain.Metadata{meta}))

	assert.Len(t, fake.points, 1)
	assert.Equal(t, 1, fake.upserts, "second upsert should probe and skip")
}

func TestUpsertSkipsHashlessMetadata(t *testing.T) {
	fake := newFakeQdrant()
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	store, err := NewStore(Config{URL: srv.URL, Collection: "policy_docs"}, 2)
	require.NoError(t, err)

	require.NoError(t, store.Upsert([][]float64{{1, 0}}, []domain.Metadata{{Title: "NoHash.md"}}))
	assert.Empty(t, fake.points)
}

func TestSearchMapsPayload(t *testing.T) {
	fake := newFakeQdrant()
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	store, err := NewStore(Config{URL: srv.URL, Collection: "policy_docs"}, 2)
	require.NoError(t, err)

	meta := domain.Metadata{Hash: domain.ContentHash("refund policy"), Title: "Returns.md", Section: "Refund Window", Text: "refund policy"}
	require.NoError(t, store.Upsert([][]float64{{1, 0}}, []domain.Metadata{meta}))

	results, err := store.Search([]float64{1, 0}, 4)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, meta, results[0].Meta)
	assert.Equal(t, 0.9, results[0].Score)
}

func TestSearchZeroK(t *testing.T) {
	fake := newFakeQdrant()
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	store, err := NewStore(Config{URL: srv.URL, Collection: "policy_docs"}, 2)
	require.NoError(t, err)

	results, err := store.Search([]float64{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}
