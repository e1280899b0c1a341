package optimization

import (
	"math/rand"
	"time"
)

// WeightSampler draws random long-only weight vectors: n independent uniform
// values normalized by their sum, so every vector is non-negative and sums to
// one within floating tolerance. A fixed seed yields a bit-identical sample
// sequence, which the reproducibility contract depends on.
type WeightSampler struct {
	n   int
	rng *rand.Rand
}

// NewWeightSampler creates a sampler for n assets. A nil seed uses a
// time-based source.
func NewWeightSampler(n int, seed *int64) *WeightSampler {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	return &WeightSampler{
		n:   n,
		rng: rand.New(rand.NewSource(s)),
	}
}

// Sample draws one weight vector.
func (s *WeightSampler) Sample() []float64 {
	if s.n == 0 {
		return []float64{}
	}
	weights := make([]float64, s.n)
	for {
		sum := 0.0
		for i := range weights {
			weights[i] = s.rng.Float64()
			sum += weights[i]
		}
		if sum == 0 {
			// All draws were exactly zero; redraw.
			continue
		}
		for i := range weights {
			weights[i] /= sum
		}
		return weights
	}
}

// SampleN draws m weight vectors in sampling order.
func (s *WeightSampler) SampleN(m int) [][]float64 {
	if m <= 0 {
		return [][]float64{}
	}
	samples := make([][]float64, m)
	for i := 0; i < m; i++ {
		samples[i] = s.Sample()
	}
	return samples
}
