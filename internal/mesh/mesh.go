// Package mesh holds the geometry snapshots exchanged between geometry
// providers, the correspondence resolver and the deformation evaluator.
package mesh

import "mapped-wrap/internal/mathutil"

// PointSet is an ordered sequence of vertex positions indexed by vertex index.
type PointSet []mathutil.Vec3

// Clone returns an independent copy.
func (ps PointSet) Clone() PointSet {
	if ps == nil {
		return nil
	}
	out := make(PointSet, len(ps))
	copy(out, ps)
	return out
}

// Transform returns a new PointSet with every point multiplied by m.
func (ps PointSet) Transform(m mathutil.Mat4) PointSet {
	out := make(PointSet, len(ps))
	for i, p := range ps {
		out[i] = m.MulPoint(p)
	}
	return out
}

// Bounds returns the axis-aligned min/max corners. Empty sets return zero vectors.
func (ps PointSet) Bounds() (min, max mathutil.Vec3) {
	if len(ps) == 0 {
		return
	}
	min, max = ps[0], ps[0]
	for _, p := range ps[1:] {
		for k := 0; k < 3; k++ {
			if p[k] < min[k] {
				min[k] = p[k]
			}
			if p[k] > max[k] {
				max[k] = p[k]
			}
		}
	}
	return min, max
}

// Triangle indexes three vertices of the owning shape.
type Triangle [3]int

// Shape is one mesh as seen by the deformer: object-space points plus the
// object-to-world transform of its node. Triangles are optional and only used
// for previews and OBJ output.
type Shape struct {
	Name      string
	Points    PointSet
	Transform mathutil.Mat4
	Tris      []Triangle
}

// NewShape returns a shape with an identity transform.
func NewShape(name string, points PointSet) *Shape {
	return &Shape{Name: name, Points: points, Transform: mathutil.Mat4Identity()}
}

// WorldPoints returns the shape's points converted to world space.
func (s *Shape) WorldPoints() PointSet {
	if s.Transform.IsIdentity() {
		return s.Points.Clone()
	}
	return s.Points.Transform(s.Transform)
}

// Len returns the vertex count.
func (s *Shape) Len() int {
	return len(s.Points)
}
