package interpolation

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// SingleFloatEpsilon is the float32 machine epsilon. Positions closer than
// half the average layout radius times this value are the same electrode.
const SingleFloatEpsilon = 1.1920929e-7

// sitePoint is a source position that remembers its channel index
type sitePoint struct {
	r3.Vec
	index int
}

// Compare implements the kdtree.Comparable interface
func (p sitePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(sitePoint)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	case 2:
		return p.Z - q.Z
	default:
		panic("illegal dimension")
	}
}

// Dims returns the number of dimensions for the KD-tree
func (p sitePoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between two points
func (p sitePoint) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(p.Vec, c.(sitePoint).Vec))
}

// sites is a collection of sitePoint that satisfies kdtree.Interface
type sites []sitePoint

func (s sites) Index(i int) kdtree.Comparable         { return s[i] }
func (s sites) Len() int                              { return len(s) }
func (s sites) Slice(start, end int) kdtree.Interface { return s[start:end] }

// Pivot implements the kdtree.Interface method
func (s sites) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(sitePlane{sites: s, Dim: d}, kdtree.MedianOfRandoms(sitePlane{sites: s, Dim: d}, 100))
}

// sitePlane implements sort.Interface and kdtree.SortSlicer for sites
type sitePlane struct {
	sites
	kdtree.Dim
}

func (p sitePlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.sites[i].X < p.sites[j].X
	case 1:
		return p.sites[i].Y < p.sites[j].Y
	case 2:
		return p.sites[i].Z < p.sites[j].Z
	default:
		panic("illegal dimension")
	}
}

func (p sitePlane) Slice(start, end int) kdtree.SortSlicer {
	return sitePlane{sites: p.sites[start:end], Dim: p.Dim}
}

func (p sitePlane) Swap(i, j int) {
	p.sites[i], p.sites[j] = p.sites[j], p.sites[i]
}

// MatchTable gives, for each destination, the source channel sitting at
// exactly the same position, or -1.
type MatchTable []int

// BuildMatchTable searches every source position for each destination.
// Positions are compared in fiducial space. Only sources flagged in
// eligible can be matched; a nil eligible matches nothing.
func BuildMatchTable(sources, dests []r3.Vec, eligible []bool) MatchTable {
	table := make(MatchTable, len(dests))
	for j := range table {
		table[j] = -1
	}
	if len(sources) == 0 || len(dests) == 0 || eligible == nil {
		return table
	}

	tol := matchTolerance((meanRadius(sources) + meanRadius(dests)) / 2)
	tol2 := tol * tol
	tree := newSiteTree(sources)

	for j, q := range dests {
		nearest, d2 := tree.Nearest(sitePoint{Vec: q, index: -1})
		if nearest == nil || d2 > tol2 {
			continue
		}
		k := nearest.(sitePoint).index
		if eligible[k] {
			table[j] = k
		}
	}

	return table
}

// FindDuplicates returns the first pair of positions closer than the
// exact-match tolerance. Such pairs make the interpolation system singular.
func FindDuplicates(pos []r3.Vec) (int, int, bool) {
	if len(pos) < 2 {
		return 0, 0, false
	}

	tol := matchTolerance(meanRadius(pos))
	tree := newSiteTree(pos)

	for i, p := range pos {
		keeper := kdtree.NewNKeeper(2)
		tree.NearestSet(keeper, sitePoint{Vec: p, index: -1})
		for _, c := range keeper.Heap {
			if c.Comparable == nil {
				continue
			}
			j := c.Comparable.(sitePoint).index
			if j != i && c.Dist <= tol*tol {
				return min(i, j), max(i, j), true
			}
		}
	}
	return 0, 0, false
}

func newSiteTree(pos []r3.Vec) *kdtree.Tree {
	pts := make(sites, len(pos))
	for i, p := range pos {
		pts[i] = sitePoint{Vec: p, index: i}
	}
	return kdtree.New(pts, false)
}

// matchTolerance is half the average radius scaled by SingleFloatEpsilon
func matchTolerance(radius float64) float64 {
	return 0.5 * radius * SingleFloatEpsilon
}

// Matched returns the source channel of destination j, if any
func (m MatchTable) Matched(j int) (int, bool) {
	k := m[j]
	return k, k >= 0
}

// Count returns the number of matched destinations
func (m MatchTable) Count() int {
	n := 0
	for _, k := range m {
		if k >= 0 {
			n++
		}
	}
	return n
}

// All reports whether every destination is matched, in which case no
// system ever needs solving.
func (m MatchTable) All() bool {
	return m.Count() == len(m)
}

func meanRadius(pos []r3.Vec) float64 {
	if len(pos) == 0 {
		return 0
	}
	radii := make([]float64, len(pos))
	for i, p := range pos {
		radii[i] = r3.Norm(p)
	}
	return floats.Sum(radii) / float64(len(radii))
}
