// Package ingest loads source files from disk and turns them into indexable
// chunks. File I/O lives here, at the boundary; the chunker stays pure.
package ingest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/vikneshkrishnan/ai-policy-helper/internal/chunker"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/domain"
)

// LoadDocuments reads every .md and .txt file in dir in sorted filename order
// and segments each one into heading-delimited documents. Bytes that are not
// valid UTF-8 are dropped rather than failing the whole corpus.
func LoadDocuments(dir string) ([]domain.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var docs []domain.Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".md" && ext != ".txt" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		text := strings.ToValidUTF8(string(data), "")
		for _, sec := range chunker.Segment(text) {
			docs = append(docs, domain.Document{Title: name, Section: sec.Title, Text: sec.Body})
		}
	}
	return docs, nil
}

// BuildChunks runs every document section through the splitter, carrying the
// title and section labels onto each resulting chunk.
func BuildChunks(docs []domain.Document, splitter *chunker.Splitter) []domain.Chunk {
	var chunks []domain.Chunk
	for _, d := range docs {
		for _, text := range splitter.Split(d.Text) {
			chunks = append(chunks, domain.Chunk{Title: d.Title, Section: d.Section, Text: text})
		}
	}
	return chunks
}
