package mathutil

import "github.com/go-gl/mathgl/mgl64"

// Mat4 is a 4×4 affine matrix stored row-major. Points are column vectors:
// world = M × object.
type Mat4 [16]float64

func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4Mul returns a × b.
func Mat4Mul(a, b Mat4) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = a[r*4+0]*b[0*4+c] + a[r*4+1]*b[1*4+c] +
				a[r*4+2]*b[2*4+c] + a[r*4+3]*b[3*4+c]
		}
	}
	return m
}

// MulPoint transforms a 3D point (w=1) by the 4×4 matrix.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	p := Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11],
	}
	w := m[12]*v[0] + m[13]*v[1] + m[14]*v[2] + m[15]
	if w != 1 && w != 0 {
		p = p.Scale(1 / w)
	}
	return p
}

// FromMat3Translation builds a 4×4 affine matrix from a 3×3 linear part and translation.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	return Mat4{
		r[0], r[1], r[2], t[0],
		r[3], r[4], r[5], t[1],
		r[6], r[7], r[8], t[2],
		0, 0, 0, 1,
	}
}

// Compose builds translate × rotate × scale. Rotation is Euler XYZ in degrees,
// applied X first, matching the order scene files are authored in.
func Compose(translate, rotateDeg, scale Vec3) Mat4 {
	r := Mat3Mul(EulerXYZ(rotateDeg.Scale(Deg2Rad(1))), Mat3Diag(scale[0], scale[1], scale[2]))
	return FromMat3Translation(r, translate)
}

func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			t[c*4+r] = m[r*4+c]
		}
	}
	return t
}

// Inverse returns m⁻¹. A singular matrix yields identity.
// mgl64 is column-major, so the row-major layout is transposed on the way in and out.
func (m Mat4) Inverse() Mat4 {
	cm := mgl64.Mat4(m.Transpose())
	if cm.Det() == 0 {
		return Mat4Identity()
	}
	return Mat4(cm.Inv()).Transpose()
}

// IsIdentity checks if the matrix is approximately identity.
func (m Mat4) IsIdentity() bool {
	id := Mat4Identity()
	for i := 0; i < 16; i++ {
		d := m[i] - id[i]
		if d > 1e-8 || d < -1e-8 {
			return false
		}
	}
	return true
}
