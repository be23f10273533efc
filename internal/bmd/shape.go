package bmd

import (
	"mapped-wrap/internal/mathutil"
	"mapped-wrap/internal/mesh"
)

// BindPose computes the world transform of each bone at action 0, frame 0.
func BindPose(bones []Bone) []mathutil.Mat4 {
	worlds := make([]mathutil.Mat4, len(bones))
	for i, bone := range bones {
		if bone.IsDummy {
			worlds[i] = mathutil.Mat4Identity()
			continue
		}

		local := mathutil.FromMat3Translation(mathutil.EulerXYZ(bone.BindRotation), mathutil.Vec3(bone.BindPosition))

		// Parents precede children in the file.
		if bone.Parent >= 0 && bone.Parent < i {
			worlds[i] = mathutil.Mat4Mul(worlds[bone.Parent], local)
		} else {
			worlds[i] = local
		}
	}
	return worlds
}

// ToShape flattens all sub-meshes into one shape. Vertex indices run through
// the sub-meshes in file order; quads are split into two triangles. With posed
// set, each vertex is moved rigidly by its bone's bind-pose transform.
func ToShape(name string, m *Model, posed bool) *mesh.Shape {
	var worlds []mathutil.Mat4
	if posed && len(m.Bones) > 0 {
		worlds = BindPose(m.Bones)
	}

	s := mesh.NewShape(name, make(mesh.PointSet, 0, m.VertexCount()))
	for mi := range m.Meshes {
		sub := &m.Meshes[mi]
		offset := len(s.Points)

		for vi, v := range sub.Verts {
			p := mathutil.Vec3From32(v)
			if worlds != nil {
				if b := int(sub.Nodes[vi]); b >= 0 && b < len(worlds) {
					p = worlds[b].MulPoint(p)
				}
			}
			s.Points = append(s.Points, p)
		}

		n := len(sub.Verts)
		add := func(a, b, c int16) {
			i, j, k := int(a), int(b), int(c)
			if i < 0 || j < 0 || k < 0 || i >= n || j >= n || k >= n {
				return
			}
			s.Tris = append(s.Tris, mesh.Triangle{offset + i, offset + j, offset + k})
		}
		for _, t := range sub.Tris {
			add(t.VI[0], t.VI[1], t.VI[2])
			if t.Polygon == 4 {
				add(t.VI[0], t.VI[2], t.VI[3])
			}
		}
	}
	return s
}
