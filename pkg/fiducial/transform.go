// Package fiducial derives the canonical coordinate frame of a sensor layout
// from five landmark groups (front, left, top, right, rear).
//
// Two layouts that share the same landmark labels land in the same frame
// regardless of their overall shape: the frame is built from the literal
// landmark anchors rather than from a best-fit sphere or ellipsoid.
package fiducial

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"trackinterp/internal/models"
)

var (
	// ErrIncompleteLandmarks is returned when only some of the five groups are given
	ErrIncompleteLandmarks = errors.New("incomplete landmarks: all 5 groups or none are required")

	// ErrMissingLandmarks is returned when normalization is requested without landmarks
	ErrMissingLandmarks = errors.New("fiducial normalization requires the 5 landmark groups")

	// ErrUnknownLandmark is returned when a landmark names a point absent from the set
	ErrUnknownLandmark = errors.New("unknown landmark point")

	// ErrDegenerateBasis is returned when the landmark axes do not span 3D
	ErrDegenerateBasis = errors.New("degenerate landmark basis")
)

// collapseRatio is the relative length under which the top axis is
// considered collapsed (flat or grid layouts).
const collapseRatio = 1e-6

// Transform is a 4x4 homogeneous affine transform
type Transform struct {
	m *mat.Dense
}

// Identity returns the identity transform
func Identity() *Transform {
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		m.Set(i, i, 1)
	}
	return &Transform{m: m}
}

// NewTransform wraps a 4x4 matrix. The matrix is copied.
func NewTransform(m mat.Matrix) (*Transform, error) {
	r, c := m.Dims()
	if r != 4 || c != 4 {
		return nil, fmt.Errorf("transform must be 4x4, got %dx%d", r, c)
	}
	return &Transform{m: mat.DenseCopyOf(m)}, nil
}

// Matrix returns a read-only view of the homogeneous matrix
func (t *Transform) Matrix() mat.Matrix { return t.m }

// Apply maps p through the transform
func (t *Transform) Apply(p r3.Vec) r3.Vec {
	in := [4]float64{p.X, p.Y, p.Z, 1}
	var out [4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i] += t.m.At(i, j) * in[j]
		}
	}
	if out[3] != 0 && out[3] != 1 {
		return r3.Vec{X: out[0] / out[3], Y: out[1] / out[3], Z: out[2] / out[3]}
	}
	return r3.Vec{X: out[0], Y: out[1], Z: out[2]}
}

// ApplyAll maps every point of pos into a new slice
func (t *Transform) ApplyAll(pos []r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(pos))
	for i, p := range pos {
		out[i] = t.Apply(p)
	}
	return out
}

// Then returns the transform applying t first and next second
func (t *Transform) Then(next *Transform) *Transform {
	var m mat.Dense
	m.Mul(next.m, t.m)
	return &Transform{m: &m}
}

// CheckLandmarks enforces the all-or-none rule on the landmark groups
func CheckLandmarks(lm models.Landmarks) error {
	if n := lm.Count(); n != 0 && n != 5 {
		return fmt.Errorf("%w (%d of 5 given)", ErrIncompleteLandmarks, n)
	}
	return nil
}

// Anchors resolves each landmark group to the mean of its points, in
// models.LandmarkNames order.
func Anchors(set *models.PointSet, lm models.Landmarks) ([5]r3.Vec, error) {
	var anchors [5]r3.Vec

	for g, names := range lm.Groups() {
		indices := make([]int, 0, len(names))
		for _, name := range names {
			if strings.TrimSpace(name) == "" {
				continue
			}
			i, ok := set.Lookup(name)
			if !ok {
				return anchors, fmt.Errorf("%w: %s landmark %q", ErrUnknownLandmark, models.LandmarkNames[g], name)
			}
			indices = append(indices, i)
		}
		if len(indices) == 0 {
			return anchors, fmt.Errorf("%w: %s landmark is empty", ErrIncompleteLandmarks, models.LandmarkNames[g])
		}

		// Summing in index order keeps the mean bit-identical whatever the
		// order the names were listed in.
		sort.Ints(indices)
		var sum r3.Vec
		for _, i := range indices {
			sum = r3.Add(sum, set.At(i).Pos)
		}
		anchors[g] = r3.Scale(1/float64(len(indices)), sum)
	}

	return anchors, nil
}

// ComputeTransform builds the transform taking set into fiducial space.
// With normalized set, the points are taken as already in fiducial space
// and the identity is returned.
func ComputeTransform(set *models.PointSet, lm models.Landmarks, normalized bool) (*Transform, error) {
	if normalized {
		return Identity(), nil
	}

	if err := CheckLandmarks(lm); err != nil {
		return nil, err
	}
	if lm.Count() == 0 {
		return nil, ErrMissingLandmarks
	}

	a, err := Anchors(set, lm)
	if err != nil {
		return nil, err
	}
	front, left, top, right, rear := a[0], a[1], a[2], a[3], a[4]

	origin := r3.Scale(0.25, r3.Add(r3.Add(front, rear), r3.Add(left, right)))

	xAxis := r3.Scale(0.5, r3.Sub(front, rear))
	yAxis := r3.Scale(0.5, r3.Sub(left, right))
	zAxis := r3.Sub(top, origin)

	meanXY := (r3.Norm(xAxis) + r3.Norm(yAxis)) / 2
	if r3.Norm(zAxis) <= collapseRatio*meanXY {
		// Flat layout: synthesize the vertical from the two planar axes
		z := r3.Cross(xAxis, yAxis)
		if r3.Norm(z) == 0 {
			return nil, fmt.Errorf("%w: front and left axes are parallel", ErrDegenerateBasis)
		}
		zAxis = r3.Scale(meanXY, r3.Unit(z))
	}

	basis := mat.NewDense(3, 3, []float64{
		xAxis.X, yAxis.X, zAxis.X,
		xAxis.Y, yAxis.Y, zAxis.Y,
		xAxis.Z, yAxis.Z, zAxis.Z,
	})

	var inv mat.Dense
	if err := inv.Inverse(basis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateBasis, err)
	}

	rot := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rot.Set(i, j, inv.At(i, j))
		}
	}
	rot.Set(3, 3, 1)

	shift := Identity()
	shift.m.Set(0, 3, -origin.X)
	shift.m.Set(1, 3, -origin.Y)
	shift.m.Set(2, 3, -origin.Z)

	t := shift.Then(&Transform{m: rot})
	t.normalize()

	return t, nil
}

// normalize rescales the matrix so its homogeneous element is 1
func (t *Transform) normalize() {
	w := t.m.At(3, 3)
	if w == 0 || w == 1 || math.IsNaN(w) {
		return
	}
	t.m.Scale(1/w, t.m)
}
