package interpolation

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Strategy bundles everything that depends on the interpolation method.
// It is resolved once by NewStrategy and shared read-only afterwards.
type Strategy interface {
	Method() Method
	Degree() int

	// Project maps a fiducial-space point into kernel space
	Project(p r3.Vec) r3.Vec

	// Kernel is the pairwise function of the interpolation system
	Kernel(p, q r3.Vec) float64

	// DestinationKernel is the pairwise function used to evaluate the
	// solved spline at a destination point
	DestinationKernel(p, q r3.Vec) float64

	// TermCount is the number of polynomial constraint terms
	TermCount() int

	// Polynomial writes the TermCount monomials of a source point into dst
	Polynomial(dst []float64, pw Powers)

	// DestinationPolynomial writes the polynomial terms used at destinations
	DestinationPolynomial(dst []float64, pw Powers)

	// PreservesIdentity reports whether evaluating at a source position
	// returns the source value, which allows the exact-copy shortcut
	PreservesIdentity() bool
}

// NewStrategy returns the strategy for method, with degree clamped
func NewStrategy(method Method, degree int) (Strategy, error) {
	degree = ClampDegree(degree)

	switch method {
	case PlanarSpline:
		return planarStrategy{degree: degree}, nil
	case VolumetricSpline:
		return volumetricStrategy{degree: degree}, nil
	case SphericalSpline:
		series := newLegendreSeries(degree)
		return &sphericalStrategy{degree: degree, system: series, destination: series}, nil
	case SphericalCurrentDensitySpline:
		return &sphericalStrategy{
			degree:      degree,
			density:     true,
			system:      newLegendreSeries(degree),
			destination: newLegendreSeries(degree - 1),
		}, nil
	}
	return nil, fmt.Errorf("unknown interpolation method %d", int(method))
}

// Powers caches x^d, y^d, z^d for d = 0..degree-1
type Powers struct {
	X, Y, Z []float64
}

// NewPowers computes the powers of p needed by a spline of the given degree
func NewPowers(p r3.Vec, degree int) Powers {
	pw := Powers{
		X: make([]float64, degree),
		Y: make([]float64, degree),
		Z: make([]float64, degree),
	}
	if degree == 0 {
		return pw
	}
	pw.X[0], pw.Y[0], pw.Z[0] = 1, 1, 1
	for d := 1; d < degree; d++ {
		pw.X[d] = pw.X[d-1] * p.X
		pw.Y[d] = pw.Y[d-1] * p.Y
		pw.Z[d] = pw.Z[d-1] * p.Z
	}
	return pw
}

type planarStrategy struct {
	degree int
}

func (s planarStrategy) Method() Method             { return PlanarSpline }
func (s planarStrategy) Degree() int                { return s.degree }
func (s planarStrategy) Project(p r3.Vec) r3.Vec    { return projectPlanar(p) }
func (s planarStrategy) Kernel(p, q r3.Vec) float64 { return thinPlate(p, q, s.degree) }
func (s planarStrategy) DestinationKernel(p, q r3.Vec) float64 {
	return thinPlate(p, q, s.degree)
}
func (s planarStrategy) TermCount() int          { return s.degree * (s.degree + 1) / 2 }
func (s planarStrategy) PreservesIdentity() bool { return true }

// Polynomial order: for d < degree, k <= d: x^(d-k) y^k
func (s planarStrategy) Polynomial(dst []float64, pw Powers) {
	t := 0
	for d := 0; d < s.degree; d++ {
		for k := 0; k <= d; k++ {
			dst[t] = pw.X[d-k] * pw.Y[k]
			t++
		}
	}
}

func (s planarStrategy) DestinationPolynomial(dst []float64, pw Powers) {
	s.Polynomial(dst, pw)
}

type volumetricStrategy struct {
	degree int
}

func (s volumetricStrategy) Method() Method             { return VolumetricSpline }
func (s volumetricStrategy) Degree() int                { return s.degree }
func (s volumetricStrategy) Project(p r3.Vec) r3.Vec    { return p }
func (s volumetricStrategy) Kernel(p, q r3.Vec) float64 { return thinPlate(p, q, s.degree) }
func (s volumetricStrategy) DestinationKernel(p, q r3.Vec) float64 {
	return thinPlate(p, q, s.degree)
}
func (s volumetricStrategy) TermCount() int {
	return s.degree * (s.degree + 1) * (s.degree + 2) / 6
}
func (s volumetricStrategy) PreservesIdentity() bool { return true }

// Polynomial order: for d < degree, k <= d, g <= k: x^(d-k) y^(k-g) z^g
func (s volumetricStrategy) Polynomial(dst []float64, pw Powers) {
	t := 0
	for d := 0; d < s.degree; d++ {
		for k := 0; k <= d; k++ {
			for g := 0; g <= k; g++ {
				dst[t] = pw.X[d-k] * pw.Y[k-g] * pw.Z[g]
				t++
			}
		}
	}
}

func (s volumetricStrategy) DestinationPolynomial(dst []float64, pw Powers) {
	s.Polynomial(dst, pw)
}

// sphericalStrategy serves both spherical methods. The system always holds
// the potential spline; the current density variant evaluates its surface
// Laplacian at destinations, which lowers the series exponent by one and
// cancels the constant term.
type sphericalStrategy struct {
	degree      int
	density     bool
	system      *legendreSeries
	destination *legendreSeries
}

func (s *sphericalStrategy) Method() Method {
	if s.density {
		return SphericalCurrentDensitySpline
	}
	return SphericalSpline
}

func (s *sphericalStrategy) Degree() int             { return s.degree }
func (s *sphericalStrategy) Project(p r3.Vec) r3.Vec { return projectSphere(p) }
func (s *sphericalStrategy) TermCount() int          { return 1 }
func (s *sphericalStrategy) PreservesIdentity() bool { return !s.density }

func (s *sphericalStrategy) Kernel(p, q r3.Vec) float64 {
	return s.system.at(cosine(p, q))
}

func (s *sphericalStrategy) DestinationKernel(p, q r3.Vec) float64 {
	return s.destination.at(cosine(p, q))
}

func (s *sphericalStrategy) Polynomial(dst []float64, _ Powers) {
	dst[0] = 1
}

func (s *sphericalStrategy) DestinationPolynomial(dst []float64, _ Powers) {
	if s.density {
		dst[0] = 0
		return
	}
	dst[0] = 1
}
