package chunker

import (
	"fmt"
	"regexp"
	"strings"
)

// Section is one heading-delimited part of a markdown document.
type Section struct {
	Title string
	Body  string
}

var headingRe = regexp.MustCompile(`^(#+)\s+(.*)$`)

// Segment splits markdown text on heading lines. Each heading starts a new
// section and stays part of that section's body. Text before the first
// heading is labeled "Introduction". Empty sections are dropped; if nothing
// survives, the whole input is returned as a single "Introduction" section.
func Segment(text string) []Section {
	var sections []Section
	var current []string
	flush := func() {
		body := strings.TrimSpace(strings.Join(current, "\n"))
		current = current[:0]
		if body == "" {
			return
		}
		title := "Introduction"
		if m := headingRe.FindStringSubmatch(strings.SplitN(body, "\n", 2)[0]); m != nil {
			title = strings.TrimSpace(m[2])
		}
		sections = append(sections, Section{Title: title, Body: body})
	}
	for _, line := range strings.Split(text, "\n") {
		if headingRe.MatchString(line) {
			flush()
		}
		current = append(current, line)
	}
	flush()
	if len(sections) == 0 {
		return []Section{{Title: "Introduction", Body: text}}
	}
	return sections
}

// Splitter cuts text into overlapping windows of whitespace tokens.
type Splitter struct {
	chunkSize int
	overlap   int
}

// NewSplitter validates the window parameters. Overlap must be smaller than
// the chunk size or the window would never advance.
func NewSplitter(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("overlap must be in [0, chunk size), got overlap=%d chunk_size=%d", overlap, chunkSize)
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}, nil
}

// Split returns token windows of at most chunkSize tokens. Short texts come
// back unchanged as a single chunk. The window advances by chunkSize-overlap
// tokens and stops once it covers the last token, so every token appears at
// least once and no trailing empty chunk is produced.
func (s *Splitter) Split(text string) []string {
	tokens := strings.Fields(text)
	if len(tokens) <= s.chunkSize {
		return []string{text}
	}
	var chunks []string
	for i := 0; i < len(tokens); i += s.chunkSize - s.overlap {
		end := i + s.chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, strings.Join(tokens[i:end], " "))
		if end == len(tokens) {
			break
		}
	}
	return chunks
}
