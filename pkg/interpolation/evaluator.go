package interpolation

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// DestinationCache holds, for each destination point, the kernel against
// every source point followed by its polynomial terms. A destination value
// is then a single dot product with the solved weights.
type DestinationCache struct {
	rows   *mat.Dense
	powers []Powers
	nsrc   int
}

// NewDestinationCache evaluates the destination kernel and polynomial terms
// once per configuration. sources and dests are in kernel space.
func NewDestinationCache(s Strategy, sources, dests []r3.Vec) *DestinationCache {
	nsrc := len(sources)
	e := s.TermCount()

	c := &DestinationCache{
		powers: make([]Powers, len(dests)),
		nsrc:   nsrc,
	}
	if len(dests) == 0 {
		return c
	}
	c.rows = mat.NewDense(len(dests), nsrc+e, nil)

	for j, q := range dests {
		row := c.rows.RawRowView(j)
		for i, p := range sources {
			row[i] = s.DestinationKernel(q, p)
		}

		c.powers[j] = NewPowers(q, s.Degree())
		s.DestinationPolynomial(row[nsrc:], c.powers[j])
	}

	return c
}

// Evaluate reconstructs the value at destination j from the solved weights
func (c *DestinationCache) Evaluate(weights []float64, j int) float64 {
	return floats.Dot(weights, c.rows.RawRowView(j))
}

// Kernel returns the cached kernel between destination j and source i
func (c *DestinationCache) Kernel(j, i int) float64 {
	return c.rows.At(j, i)
}

// Powers returns the cached coordinate powers of destination j
func (c *DestinationCache) Powers(j int) Powers {
	return c.powers[j]
}
