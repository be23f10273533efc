package mathutil

import "math"

// Mat3 is a row-major 3x3 matrix: the linear part of a shape transform, or
// the preview camera rotation.
type Mat3 [9]float64

// Mat3Diag returns a scale matrix.
func Mat3Diag(x, y, z float64) Mat3 {
	return Mat3{x, 0, 0, 0, y, 0, 0, 0, z}
}

// Mat3Mul returns a × b, so b applies to a vector first.
func Mat3Mul(a, b Mat3) Mat3 {
	var m Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m[r*3+c] = a[r*3]*b[c] + a[r*3+1]*b[3+c] + a[r*3+2]*b[6+c]
		}
	}
	return m
}

func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

// Axis rotations, angle in radians, right-handed.

func RotX(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{1, 0, 0, 0, c, -s, 0, s, c}
}

func RotY(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{c, 0, s, 0, 1, 0, -s, 0, c}
}

func RotZ(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{c, -s, 0, s, c, 0, 0, 0, 1}
}

// EulerXYZ rotates about X, then Y, then Z. Angles in radians.
func EulerXYZ(r Vec3) Mat3 {
	return Mat3Mul(RotZ(r[2]), Mat3Mul(RotY(r[1]), RotX(r[0])))
}

// ViewRotation turns world space into camera space: yaw about world Y, then
// pitch about the camera X axis. Angles in degrees.
func ViewRotation(yawDeg, pitchDeg float64) Mat3 {
	return Mat3Mul(RotX(Deg2Rad(pitchDeg)), RotY(Deg2Rad(yawDeg)))
}

func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}
