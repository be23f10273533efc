package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMat4Inverse(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"identity", Mat4Identity()},
		{"translate", Compose(Vec3{1, -2, 3}, Vec3{}, Vec3{1, 1, 1})},
		{"rotate and scale", Compose(Vec3{0.5, 0, -4}, Vec3{30, 45, -60}, Vec3{2, 0.5, 3})},
	}

	points := []Vec3{{0, 0, 0}, {1, 2, 3}, {-7.5, 0.25, 10}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := tt.m.Inverse()
			assert.True(t, Mat4Mul(tt.m, inv).IsIdentity(), "m × m⁻¹ should be identity")
			for _, p := range points {
				back := inv.MulPoint(tt.m.MulPoint(p))
				assert.True(t, back.ApproxEqual(p, 1e-9), "round trip of %v gave %v", p, back)
			}
		})
	}
}

func TestMat4InverseSingular(t *testing.T) {
	m := Compose(Vec3{1, 2, 3}, Vec3{}, Vec3{0, 1, 1})
	assert.Equal(t, Mat4Identity(), m.Inverse())
}

func TestCompose(t *testing.T) {
	m := Compose(Vec3{10, 0, 0}, Vec3{0, 0, 90}, Vec3{2, 2, 2})
	got := m.MulPoint(Vec3{1, 0, 0})
	assert.True(t, got.ApproxEqual(Vec3{10, 2, 0}, 1e-9), "got %v", got)
}

func TestVec3DistSq(t *testing.T) {
	assert.Equal(t, 14.0, Vec3{1, 2, 3}.DistSq(Vec3{0, 0, 0}))
	assert.Equal(t, 0.0, Vec3{1, 2, 3}.DistSq(Vec3{1, 2, 3}))
}

func TestEulerXYZOrder(t *testing.T) {
	// X first: +Y goes to +Z, then Z by 90 leaves it on +Z.
	got := EulerXYZ(Vec3{math.Pi / 2, 0, math.Pi / 2}).MulVec3(Vec3{0, 1, 0})
	assert.True(t, got.ApproxEqual(Vec3{0, 0, 1}, 1e-9), "got %v", got)

	// +X stays under the X turn, then Z by 90 sends it to +Y.
	got = EulerXYZ(Vec3{math.Pi / 2, 0, math.Pi / 2}).MulVec3(Vec3{1, 0, 0})
	assert.True(t, got.ApproxEqual(Vec3{0, 1, 0}, 1e-9), "got %v", got)
}

func TestViewRotation(t *testing.T) {
	assert.True(t, ViewRotation(0, 0).MulVec3(Vec3{1, 2, 3}).ApproxEqual(Vec3{1, 2, 3}, 1e-12))

	// Yaw 90 turns +X toward -Z.
	got := ViewRotation(90, 0).MulVec3(Vec3{1, 0, 0})
	assert.True(t, got.ApproxEqual(Vec3{0, 0, -1}, 1e-9), "got %v", got)
}
