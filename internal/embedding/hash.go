package embedding

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand/v2"
)

// DefaultHashDimension is the vector width of the fallback embedder.
const DefaultHashDimension = 384

// HashEmbedder derives a reproducible pseudo-random vector from the SHA-256
// digest of the input text. The same text always yields the same vector;
// distinct texts diverge with overwhelming probability. Not semantically
// meaningful, but stable, collision-resistant, and dependency-free.
type HashEmbedder struct {
	dim int
}

func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultHashDimension
	}
	return &HashEmbedder{dim: dim}
}

func (e *HashEmbedder) Name() string { return "local-hash" }

func (e *HashEmbedder) Dimension() int { return e.dim }

// Embed seeds a PCG generator with the first 8 digest bytes and draws a
// standard-normal vector, then L2-normalizes it.
func (e *HashEmbedder) Embed(text string) ([]float64, error) {
	sum := sha256.Sum256([]byte(text))
	seed := binary.BigEndian.Uint64(sum[:8])
	rng := rand.New(rand.NewPCG(seed, seed))
	vec := make([]float64, e.dim)
	var norm float64
	for i := range vec {
		vec[i] = rng.NormFloat64()
		norm += vec[i] * vec[i]
	}
	norm = math.Sqrt(norm) + 1e-9
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}
