package interpolation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Solver holds the LU factorization of an interpolation system. It is
// computed once per configuration and then only read, so SolveTo may be
// called from many goroutines as long as each passes its own dst.
type Solver struct {
	lu   mat.LU
	size int
}

// Factorize factorizes a. Exactly singular or numerically ill-conditioned
// systems (duplicated source positions, too few points for the degree) are
// rejected with ErrIllConditioned rather than yielding unstable weights.
func Factorize(a mat.Matrix) (*Solver, error) {
	r, c := a.Dims()
	if r != c {
		return nil, fmt.Errorf("interpolation system must be square, got %dx%d", r, c)
	}

	s := &Solver{size: r}
	s.lu.Factorize(a)

	cond := s.lu.Cond()
	if math.IsInf(cond, 0) || math.IsNaN(cond) || cond > mat.ConditionTolerance {
		return nil, fmt.Errorf("%w: condition number %.3g", ErrIllConditioned, cond)
	}

	return s, nil
}

// Size returns the dimension of the system
func (s *Solver) Size() int { return s.size }

// Cond returns the condition number estimate of the factorized system
func (s *Solver) Cond() float64 { return s.lu.Cond() }

// SolveTo solves A x = b into dst. dst must not alias b.
func (s *Solver) SolveTo(dst, b *mat.VecDense) error {
	return s.lu.SolveVecTo(dst, false, b)
}
