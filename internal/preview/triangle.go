package preview

import (
	"math"

	"mapped-wrap/internal/mathutil"
)

// drawTriangle fills a screen-space triangle with a flat-shaded color.
// a, b and c carry pixel x, pixel y and depth.
func drawTriangle(fb *FrameBuffer, a, b, c mathutil.Vec3, base [3]uint8, l *Light) {
	// Screen y points down; flip it back for the normal.
	n := mathutil.Vec3{b[0] - a[0], a[1] - b[1], b[2] - a[2]}.
		Cross(mathutil.Vec3{c[0] - a[0], a[1] - c[1], c[2] - a[2]})
	if n.Len() < 1e-8 {
		return
	}
	color := l.Apply(base, l.Shade(n.Normalize()))

	minX := int(math.Max(math.Floor(math.Min(math.Min(a[0], b[0]), c[0])), 0))
	maxX := int(math.Min(math.Ceil(math.Max(math.Max(a[0], b[0]), c[0])), float64(fb.Width-1)))
	minY := int(math.Max(math.Floor(math.Min(math.Min(a[1], b[1]), c[1])), 0))
	maxY := int(math.Min(math.Ceil(math.Max(math.Max(a[1], b[1]), c[1])), float64(fb.Height-1)))
	if minX > maxX || minY > maxY {
		return
	}

	det := (b[1]-c[1])*(a[0]-c[0]) + (c[0]-b[0])*(a[1]-c[1])
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := b[1] - c[1]
	dx21 := c[0] - b[0]
	dy20 := c[1] - a[1]
	dx02 := a[0] - c[0]

	for y := minY; y <= maxY; y++ {
		dy := float64(y) - c[1]
		for x := minX; x <= maxX; x++ {
			dx := float64(x) - c[0]
			w0 := (dy12*dx + dx21*dy) * invDet
			w1 := (dy20*dx + dx02*dy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}
			fb.plot(x, y, w0*a[2]+w1*b[2]+w2*c[2], color)
		}
	}
}

// drawPoint splats a square dot for shapes without faces.
func drawPoint(fb *FrameBuffer, p mathutil.Vec3, radius int, base [3]uint8) {
	color := [4]uint8{base[0], base[1], base[2], 255}
	cx, cy := int(math.Round(p[0])), int(math.Round(p[1]))
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			fb.plot(x, y, p[2], color)
		}
	}
}
