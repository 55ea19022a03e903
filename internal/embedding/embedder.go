package embedding

// Embedder converts free text into a fixed-dimension L2-normalized vector.
// Dimension must be known before any vector store is constructed, since
// stores are sized to it at creation.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(text string) ([]float64, error)
}
