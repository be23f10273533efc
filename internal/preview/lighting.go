package preview

import (
	"math"

	"mapped-wrap/internal/mathutil"
)

// Light holds the flat-shading parameters.
type Light struct {
	Key      mathutil.Vec3
	Rim      mathutil.Vec3
	Half     mathutil.Vec3 // Blinn-Phong half vector of Key and the view axis
	Ambient  float64
	Hemi     float64
	Direct   float64
	RimGain  float64
	SpecInt  float64
	SpecPow  float64
	Exposure float64
	InvGamma float64
}

// DefaultLight is a key light from the upper right with a cool rim from behind.
func DefaultLight() Light {
	key := mathutil.Vec3{180, 260, 140}.Normalize()
	view := mathutil.Vec3{0, 0, -1}
	return Light{
		Key:      key,
		Rim:      mathutil.Vec3{-160, 130, -210}.Normalize(),
		Half:     key.Sub(view).Normalize(),
		Ambient:  0.45,
		Hemi:     0.40,
		Direct:   1.30,
		RimGain:  0.50,
		SpecInt:  0.35,
		SpecPow:  12.0,
		Exposure: 1.0,
		InvGamma: 1.0 / 2.2,
	}
}

// Shade returns the light intensity for a unit face normal. Faces are
// lit from both sides.
func (l *Light) Shade(n mathutil.Vec3) float64 {
	hemi := (1.0-math.Abs(n[1]))*0.5 + 0.5
	spec := n.Dot(l.Half)
	if spec < 0 {
		spec = 0
	}
	return l.Ambient +
		hemi*l.Hemi +
		math.Abs(n.Dot(l.Key))*l.Direct +
		math.Abs(n.Dot(l.Rim))*l.RimGain +
		math.Pow(spec, l.SpecPow)*l.SpecInt
}

// Apply lights an sRGB base color with shade and tone maps it back to sRGB.
func (l *Light) Apply(c [3]uint8, shade float64) [4]uint8 {
	var out [4]uint8
	for k := 0; k < 3; k++ {
		lin := srgbToLinear[c[k]] * shade * l.Exposure
		out[k] = clamp255(math.Pow(acesTonemap(lin), l.InvGamma) * 255)
	}
	out[3] = 255
	return out
}

var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// acesTonemap applies the ACES filmic curve to a linear value.
func acesTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
