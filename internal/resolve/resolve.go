// Package resolve builds vertex correspondences between a target mesh and a
// base mesh by nearest-neighbour search within a tolerance.
//
// Base vertices are sorted by X once; each query binary-searches the slab
// [x-tol, x+tol] and scans it linearly. A base mesh lying in a Y-Z plane puts
// every vertex in the slab and the search degrades to a full scan.
package resolve

import (
	"math"
	"sort"

	"mapped-wrap/internal/mathutil"
	"mapped-wrap/internal/mesh"
)

// Unmatched marks a target vertex with no base vertex within tolerance.
const Unmatched = -1

// DefaultTolerance is the match distance used when the caller gives none.
const DefaultTolerance = 0.001

// Mapping maps target vertex index to base vertex index, or Unmatched.
type Mapping []int

// Unmatched counts entries with no base vertex.
func (m Mapping) Unmatched() int {
	n := 0
	for _, b := range m {
		if b == Unmatched {
			n++
		}
	}
	return n
}

// MatchedSet returns the distinct base indices referenced by m.
func (m Mapping) MatchedSet() map[int]struct{} {
	set := make(map[int]struct{}, len(m))
	for _, b := range m {
		if b != Unmatched {
			set[b] = struct{}{}
		}
	}
	return set
}

// Overlap returns how many distinct base indices a and b both reference.
func Overlap(a, b Mapping) int {
	sa, sb := a.MatchedSet(), b.MatchedSet()
	if len(sb) < len(sa) {
		sa, sb = sb, sa
	}
	n := 0
	for idx := range sa {
		if _, ok := sb[idx]; ok {
			n++
		}
	}
	return n
}

type entry struct {
	p   mathutil.Vec3
	idx int
}

// Index is a base point set sorted by X, reusable across several targets.
type Index struct {
	sorted []entry
}

// NewIndex sorts base by X. Equal X keeps ascending vertex index.
func NewIndex(base mesh.PointSet) *Index {
	sorted := make([]entry, len(base))
	for i, p := range base {
		sorted[i] = entry{p: p, idx: i}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].p[0] < sorted[j].p[0]
	})
	return &Index{sorted: sorted}
}

// Len returns the number of indexed base vertices.
func (ix *Index) Len() int {
	return len(ix.sorted)
}

// Nearest returns the index of the base vertex closest to p whose squared
// distance is <= tol², or Unmatched. Boundary distances are included; equal
// distances resolve to the lowest base index.
func (ix *Index) Nearest(p mathutil.Vec3, tol float64) int {
	if tol < 0 || math.IsNaN(tol) {
		return Unmatched
	}
	lo, hi := p[0]-tol, p[0]+tol
	start := sort.Search(len(ix.sorted), func(i int) bool { return ix.sorted[i].p[0] >= lo })
	end := sort.Search(len(ix.sorted), func(i int) bool { return ix.sorted[i].p[0] > hi })

	tolSq := tol * tol
	best, bestDist := Unmatched, math.Inf(1)
	for _, e := range ix.sorted[start:end] {
		d := e.p.DistSq(p)
		if d > tolSq {
			continue
		}
		// Keep scanning past a worse candidate: it may only be far on Y or Z.
		if d < bestDist || (d == bestDist && e.idx < best) {
			best, bestDist = e.idx, d
		}
	}
	return best
}

// Resolve maps every target vertex, in target index order.
func (ix *Index) Resolve(target mesh.PointSet, tol float64) Mapping {
	m := make(Mapping, len(target))
	for i, p := range target {
		m[i] = ix.Nearest(p, tol)
	}
	return m
}

// Resolve maps each target vertex to its closest base vertex within tol.
func Resolve(base, target mesh.PointSet, tol float64) Mapping {
	return NewIndex(base).Resolve(target, tol)
}
