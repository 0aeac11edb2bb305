package interpolation

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestThinPlateVanishesAtZeroDistance(t *testing.T) {
	p := r3.Vec{X: 0.3, Y: -1.2, Z: 4}
	for degree := 1; degree <= MaxDegree; degree++ {
		if v := thinPlate(p, p, degree); v != 0 {
			t.Errorf("degree %d: expected 0 at zero distance, got %v", degree, v)
		}
	}
}

func TestThinPlateValue(t *testing.T) {
	// r2 = e, so the kernel is e^(degree-1)
	p := r3.Vec{}
	q := r3.Vec{X: math.Sqrt(math.E)}
	for degree := 1; degree <= 4; degree++ {
		want := math.Pow(math.E, float64(degree-1))
		if got := thinPlate(p, q, degree); math.Abs(got-want) > 1e-12*want {
			t.Errorf("degree %d: expected %v, got %v", degree, want, got)
		}
	}
}

func TestThinPlateSymmetric(t *testing.T) {
	p := r3.Vec{X: 0.1, Y: 0.7, Z: -0.4}
	q := r3.Vec{X: -1.3, Y: 0.25, Z: 0.9}
	for degree := 1; degree <= MaxDegree; degree++ {
		if thinPlate(p, q, degree) != thinPlate(q, p, degree) {
			t.Errorf("degree %d: kernel is not symmetric", degree)
		}
	}
}

func TestLegendreSeriesEndpoints(t *testing.T) {
	// P_n(1) = 1 and P_n(-1) = (-1)^n
	for exponent := 1; exponent <= 4; exponent++ {
		s := newLegendreSeries(exponent)

		var plus, minus float64
		for n := 1; n <= LegendreTerms; n++ {
			plus += s.coef[n]
			if n%2 == 0 {
				minus += s.coef[n]
			} else {
				minus -= s.coef[n]
			}
		}

		if got := s.at(1); math.Abs(got-plus) > 1e-12*math.Abs(plus) {
			t.Errorf("exponent %d: g(1) expected %v, got %v", exponent, plus, got)
		}
		if got := s.at(-1); math.Abs(got-minus) > 1e-12*math.Abs(plus) {
			t.Errorf("exponent %d: g(-1) expected %v, got %v", exponent, minus, got)
		}
	}
}

func TestLegendreSeriesLowOrder(t *testing.T) {
	// A series with fast decaying weights is dominated by its first terms
	s := newLegendreSeries(4)
	c := 0.3
	p1 := c
	p2 := (3*c*c - 1) / 2
	p3 := (5*c*c*c - 3*c) / 2
	approx := s.coef[1]*p1 + s.coef[2]*p2 + s.coef[3]*p3

	if got := s.at(c); math.Abs(got-approx) > 1e-3*s.coef[1] {
		t.Errorf("expected about %v, got %v", approx, got)
	}
}

func TestLegendreSeriesClampsCosine(t *testing.T) {
	s := newLegendreSeries(2)
	if s.at(1+1e-12) != s.at(1) {
		t.Error("cosine above 1 should be clamped")
	}
	if s.at(-1-1e-12) != s.at(-1) {
		t.Error("cosine below -1 should be clamped")
	}
}

func TestCosine(t *testing.T) {
	p := r3.Vec{X: 1, Y: 2, Z: 2}
	q := r3.Vec{X: -0.5, Y: 3, Z: 0.25}

	if cosine(p, q) != cosine(q, p) {
		t.Error("cosine is not symmetric")
	}
	if got := cosine(p, r3.Scale(2.5, p)); math.Abs(got-1) > 1e-15 {
		t.Errorf("expected 1 for parallel vectors, got %v", got)
	}
	if got := cosine(p, r3.Vec{}); got != 0 {
		t.Errorf("expected 0 against the origin, got %v", got)
	}
}

func TestProjectPlanar(t *testing.T) {
	if got := projectPlanar(r3.Vec{Z: 1}); got != (r3.Vec{}) {
		t.Errorf("vertex should land on the origin, got %v", got)
	}

	got := projectPlanar(r3.Vec{Y: 2})
	if math.Abs(got.Y-math.Pi/2) > 1e-15 || got.X != 0 || got.Z != 0 {
		t.Errorf("equator point should land at radius pi/2, got %v", got)
	}

	below := projectPlanar(r3.Vec{X: 1, Z: -1})
	if math.Abs(below.X-3*math.Pi/4) > 1e-15 {
		t.Errorf("points below the equator should keep unfolding, got %v", below)
	}
}

func TestProjectSphere(t *testing.T) {
	got := projectSphere(r3.Vec{X: 3, Y: 4})
	if math.Abs(r3.Norm(got)-1) > 1e-15 {
		t.Errorf("expected a unit vector, got norm %v", r3.Norm(got))
	}
	if projectSphere(r3.Vec{}) != (r3.Vec{}) {
		t.Error("origin should stay at the origin")
	}
}
