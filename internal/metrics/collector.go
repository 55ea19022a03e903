// Package metrics tracks retrieval/generation latency and corpus size for
// the engine. Everything is process-lifetime, append-only state behind one
// mutex; summaries are computed on read.
package metrics

import (
	"math"
	"sync"
	"time"
)

// Collector accumulates latency samples and corpus counters.
type Collector struct {
	mu         sync.Mutex
	retrieval  []float64
	generation []float64
	titles     map[string]struct{}
	chunks     int
}

func NewCollector() *Collector {
	return &Collector{titles: make(map[string]struct{})}
}

// RecordRetrieval appends one retrieval latency sample.
func (c *Collector) RecordRetrieval(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retrieval = append(c.retrieval, toMs(d))
}

// RecordGeneration appends one generation latency sample.
func (c *Collector) RecordGeneration(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation = append(c.generation, toMs(d))
}

// ObserveTitle marks a document title as seen and reports whether it is new.
func (c *Collector) ObserveTitle(title string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.titles[title]; ok {
		return false
	}
	c.titles[title] = struct{}{}
	return true
}

// ObserveChunks adds n to the total indexed chunk counter.
func (c *Collector) ObserveChunks(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks += n
}

// TotalDocs returns the number of distinct document titles seen.
func (c *Collector) TotalDocs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.titles)
}

// TotalChunks returns the total number of chunks submitted for indexing.
func (c *Collector) TotalChunks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chunks
}

// Summary returns the arithmetic mean of each latency series in
// milliseconds, rounded to two decimals. Empty series report 0.0.
func (c *Collector) Summary() (avgRetrievalMs, avgGenerationMs float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mean(c.retrieval), mean(c.generation)
}

func mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0.0
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	return math.Round(sum/float64(len(samples))*100) / 100
}

func toMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
