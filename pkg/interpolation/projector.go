package interpolation

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// projectPlanar flattens a roughly spherical layout onto a disc, keeping the
// arc length from the vertex as the planar radius.
func projectPlanar(p r3.Vec) r3.Vec {
	r := math.Hypot(p.X, p.Y)
	if r == 0 {
		return r3.Vec{}
	}
	arc := math.Atan2(r, p.Z)
	return r3.Vec{X: arc * p.X / r, Y: arc * p.Y / r}
}

// projectSphere puts p on the unit sphere. The origin stays put.
func projectSphere(p r3.Vec) r3.Vec {
	n := r3.Norm(p)
	if n == 0 {
		return p
	}
	return r3.Scale(1/n, p)
}

// ProjectAll maps fiducial-space points into the representation the
// method's kernel works on.
func ProjectAll(s Strategy, pos []r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(pos))
	for i, p := range pos {
		out[i] = s.Project(p)
	}
	return out
}
