// Package preview draws a flat-shaded image of a shape, optionally tinting the
// faces a deformer moved, and encodes it as WebP, TGA or PNG.
package preview

import (
	"image"
	"math"

	"mapped-wrap/internal/mathutil"
	"mapped-wrap/internal/mesh"
)

// Options controls the camera and colors of a render.
type Options struct {
	Size        int     // output edge in pixels
	Supersample int     // render at Size*Supersample, then downsample
	Yaw         float64 // degrees around world Y
	Pitch       float64 // degrees around camera X

	// Rest holds the undeformed object-space points. Faces touching a
	// vertex that differs from Rest are drawn in Tint.
	Rest  mesh.PointSet
	Color [3]uint8
	Tint  [3]uint8
}

// DefaultOptions is a 512px three-quarter view.
func DefaultOptions() Options {
	return Options{
		Size:        512,
		Supersample: 2,
		Yaw:         -30,
		Pitch:       20,
		Color:       [3]uint8{160, 160, 170},
		Tint:        [3]uint8{220, 120, 60},
	}
}

const marginPx = 16

// Render draws points, placed in the world by s.Transform, using s's faces.
// The result is Size x Size; an empty shape gives a transparent image.
func Render(s *mesh.Shape, points mesh.PointSet, opt Options) *image.NRGBA {
	if opt.Size <= 0 {
		opt.Size = DefaultOptions().Size
	}
	if opt.Supersample < 1 {
		opt.Supersample = 1
	}
	size := opt.Size * opt.Supersample
	fb := NewFrameBuffer(size, size)

	screen := project(points.Transform(s.Transform), opt, size)
	if len(screen) > 0 {
		moved := movedMask(points, opt.Rest)
		light := DefaultLight()
		if len(s.Tris) == 0 {
			for i, p := range screen {
				drawPoint(fb, p, opt.Supersample*2, pick(moved[i], opt))
			}
		}
		for _, t := range s.Tris {
			if !inRange(t, len(screen)) {
				continue
			}
			c := pick(moved[t[0]] || moved[t[1]] || moved[t[2]], opt)
			drawTriangle(fb, screen[t[0]], screen[t[1]], screen[t[2]], c, &light)
		}
	}

	img := fb.Image()
	if opt.Supersample > 1 {
		img = Downsample(img, opt.Size)
	}
	return img
}

// project rotates world points into view and fits them inside the frame.
func project(world mesh.PointSet, opt Options, size int) mesh.PointSet {
	if len(world) == 0 {
		return nil
	}
	view := mathutil.ViewRotation(opt.Yaw, opt.Pitch)
	rotated := make(mesh.PointSet, len(world))
	for i, p := range world {
		rotated[i] = view.MulVec3(p)
	}

	lo, hi := rotated.Bounds()
	center := lo.Add(hi).Scale(0.5)
	span := math.Max(hi[0]-lo[0], hi[1]-lo[1])
	if span < 0.001 {
		span = 0.001
	}
	margin := float64(marginPx * opt.Supersample)
	if margin*4 > float64(size) {
		margin = float64(size) / 8
	}
	scale := (float64(size) - 2*margin) / span
	half := float64(size) / 2

	for i, p := range rotated {
		d := p.Sub(center)
		rotated[i] = mathutil.Vec3{half + d[0]*scale, half - d[1]*scale, d[2] * scale}
	}
	return rotated
}

func movedMask(points, rest mesh.PointSet) []bool {
	moved := make([]bool, len(points))
	if len(rest) != len(points) {
		return moved
	}
	for i := range points {
		moved[i] = !points[i].ApproxEqual(rest[i], 1e-9)
	}
	return moved
}

func pick(moved bool, opt Options) [3]uint8 {
	if moved {
		return opt.Tint
	}
	return opt.Color
}

func inRange(t mesh.Triangle, n int) bool {
	for _, i := range t {
		if i < 0 || i >= n {
			return false
		}
	}
	return true
}
