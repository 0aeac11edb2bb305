package interpolation

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// LegendreTerms is the fixed number of terms of the spherical series.
// Beyond it the (n(n+1))^-m weights no longer move the sum in float64.
const LegendreTerms = 64

// thinPlate returns r2^(degree-1) * ln(r2) for r2 = |p-q|^2, and 0 at r2 == 0
func thinPlate(p, q r3.Vec, degree int) float64 {
	r2 := r3.Norm2(r3.Sub(p, q))
	if r2 == 0 {
		return 0
	}

	v := math.Log(r2)
	for i := 1; i < degree; i++ {
		v *= r2
	}
	return v
}

// legendreSeries holds the weights of a truncated Legendre expansion
//
//	g(c) = sum_{n=1..N} (2n+1) / (n(n+1))^m * P_n(c) / (4 pi)
type legendreSeries struct {
	coef [LegendreTerms + 1]float64
}

func newLegendreSeries(exponent int) *legendreSeries {
	s := &legendreSeries{}
	for n := 1; n <= LegendreTerms; n++ {
		nn := float64(n * (n + 1))
		s.coef[n] = (2*float64(n) + 1) / math.Pow(nn, float64(exponent)) / (4 * math.Pi)
	}
	return s
}

// at evaluates the series at cosine c. The terms are accumulated with
// Neumaier compensation since float64 is the widest float available.
func (s *legendreSeries) at(c float64) float64 {
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}

	var sum, comp float64
	add := func(x float64) {
		t := sum + x
		if math.Abs(sum) >= math.Abs(x) {
			comp += (sum - t) + x
		} else {
			comp += (x - t) + sum
		}
		sum = t
	}

	pPrev, p := 1.0, c
	add(s.coef[1] * p)
	for n := 2; n <= LegendreTerms; n++ {
		fn := float64(n)
		next := ((2*fn-1)*c*p - (fn-1)*pPrev) / fn
		pPrev, p = p, next
		add(s.coef[n] * p)
	}

	return sum + comp
}

// cosine returns the cosine of the angle between p and q, 0 if either is null.
// The expression is symmetric in p and q to the last bit.
func cosine(p, q r3.Vec) float64 {
	np, nq := r3.Norm(p), r3.Norm(q)
	if np == 0 || nq == 0 {
		return 0
	}
	return r3.Dot(p, q) / (np * nq)
}
