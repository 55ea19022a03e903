package generation

import (
	"strings"

	"github.com/vikneshkrishnan/ai-policy-helper/internal/domain"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/summarizer"
)

// StubGenerator is the dependency-free generation variant: it lists the
// source titles and sections, then appends an extractive summary of the
// retrieved contexts. Pure string formatting, no failure modes.
type StubGenerator struct {
	summarizer *summarizer.FrequencySummarizer
	sentences  int
}

func NewStubGenerator() *StubGenerator {
	return &StubGenerator{summarizer: summarizer.NewFrequencySummarizer(), sentences: 3}
}

func (g *StubGenerator) Name() string { return "stub" }

func (g *StubGenerator) Generate(query string, contexts []domain.Metadata) (string, error) {
	var b strings.Builder
	b.WriteString("Answer (stub): Based on the following sources:\n")
	for _, c := range contexts {
		section := c.Section
		if section == "" {
			section = "Section"
		}
		b.WriteString("- " + c.Title + " — " + section + "\n")
	}
	b.WriteString("Summary:\n")
	texts := make([]string, 0, len(contexts))
	for _, c := range contexts {
		texts = append(texts, c.Text)
	}
	b.WriteString(g.summarizer.Summarize(strings.Join(texts, " "), g.sentences))
	return b.String(), nil
}
