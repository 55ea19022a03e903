package generation

import "github.com/vikneshkrishnan/ai-policy-helper/internal/domain"

// Generator turns a query and its retrieved contexts into an answer.
// Answers must cite each context by document title and section, and say so
// when the contexts cannot answer the question.
type Generator interface {
	Name() string
	Generate(query string, contexts []domain.Metadata) (string, error)
}
