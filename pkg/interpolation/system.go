package interpolation

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// BuildSystem assembles the symmetric interpolation matrix for the projected
// source points:
//
//	| K  P |
//	| P' 0 |
//
// K holds the pairwise kernel, P the polynomial terms of each source point.
// Only the upper triangle is computed, so each pair costs one kernel call.
func BuildSystem(s Strategy, points []r3.Vec) *mat.SymDense {
	n := len(points)
	e := s.TermCount()
	a := mat.NewSymDense(n+e, nil)

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a.SetSym(i, j, s.Kernel(points[i], points[j]))
		}
	}

	terms := make([]float64, e)
	for i, p := range points {
		s.Polynomial(terms, NewPowers(p, s.Degree()))
		for t, v := range terms {
			a.SetSym(i, n+t, v)
		}
	}

	return a
}
