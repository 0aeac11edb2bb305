package models

import (
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Point is a single named sensor position
type Point struct {
	// Name is the electrode label as found in the coordinate file
	Name string

	// Pos is the position in the file's own coordinate frame
	Pos r3.Vec
}

// PointSet is an ordered list of named 3D points. The order is the canonical
// channel index space for every track recorded with this layout, so a
// PointSet is never reordered or modified once loaded.
type PointSet struct {
	points []Point
	index  map[string]int
}

// NewPointSet copies points into a new immutable set
func NewPointSet(points []Point) *PointSet {
	s := &PointSet{
		points: make([]Point, len(points)),
		index:  make(map[string]int, len(points)),
	}
	copy(s.points, points)

	for i, p := range s.points {
		key := strings.ToLower(p.Name)
		// First occurrence wins for duplicated labels
		if _, ok := s.index[key]; !ok {
			s.index[key] = i
		}
	}

	return s
}

// Len returns the number of points
func (s *PointSet) Len() int { return len(s.points) }

// At returns the i-th point
func (s *PointSet) At(i int) Point { return s.points[i] }

// Names returns the point names in canonical order
func (s *PointSet) Names() []string {
	names := make([]string, len(s.points))
	for i, p := range s.points {
		names[i] = p.Name
	}
	return names
}

// Positions returns a copy of the point positions in canonical order
func (s *PointSet) Positions() []r3.Vec {
	pos := make([]r3.Vec, len(s.points))
	for i, p := range s.points {
		pos[i] = p.Pos
	}
	return pos
}

// Lookup returns the index of the named point. Names compare case-insensitively.
func (s *PointSet) Lookup(name string) (int, bool) {
	i, ok := s.index[strings.ToLower(strings.TrimSpace(name))]
	return i, ok
}

// Subset returns a new set holding only the points whose keep flag is set
func (s *PointSet) Subset(keep []bool) *PointSet {
	points := make([]Point, 0, len(s.points))
	for i, p := range s.points {
		if i < len(keep) && keep[i] {
			points = append(points, p)
		}
	}
	return NewPointSet(points)
}

// WithPositions returns a set with the same names and new positions.
// pos must have the same length as the set.
func (s *PointSet) WithPositions(pos []r3.Vec) *PointSet {
	points := make([]Point, len(s.points))
	for i, p := range s.points {
		points[i] = Point{Name: p.Name, Pos: pos[i]}
	}
	return NewPointSet(points)
}

// Landmarks holds the five fiducial groups used to normalize a layout.
// Each group lists point names whose mean position is the landmark anchor.
type Landmarks struct {
	Front []string `yaml:"front"`
	Left  []string `yaml:"left"`
	Top   []string `yaml:"top"`
	Right []string `yaml:"right"`
	Rear  []string `yaml:"rear"`
}

// LandmarkNames is the display order of the landmark groups
var LandmarkNames = [5]string{"front", "left", "top", "right", "rear"}

// Groups returns the five groups in LandmarkNames order
func (l Landmarks) Groups() [5][]string {
	return [5][]string{l.Front, l.Left, l.Top, l.Right, l.Rear}
}

// Count returns how many groups have at least one non-blank name
func (l Landmarks) Count() int {
	n := 0
	for _, g := range l.Groups() {
		for _, name := range g {
			if strings.TrimSpace(name) != "" {
				n++
				break
			}
		}
	}
	return n
}
