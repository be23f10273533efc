// Package bmd reads unencrypted (version 10) BMD model files as deformer
// geometry.
package bmd

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
)

// ErrEncrypted is returned for BMD versions whose payload is encrypted.
var ErrEncrypted = errors.New("bmd: encrypted model versions are not supported")

const (
	maxMeshes   = 100
	triangleLen = 64
)

// Parse reads a BMD file from disk.
func Parse(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bmd: read %s: %w", path, err)
	}
	m, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("bmd: %s: %w", path, err)
	}
	return m, nil
}

// Decode parses an in-memory BMD file.
func Decode(raw []byte) (*Model, error) {
	if len(raw) < 4 || string(raw[:3]) != "BMD" {
		return nil, errors.New("invalid header")
	}

	version := raw[3]
	switch version {
	case 12, 15:
		return nil, fmt.Errorf("version %d: %w", version, ErrEncrypted)
	}

	r := &reader{data: raw[4:]}
	m, err := r.model()
	if err != nil {
		return nil, err
	}
	m.Version = version
	return m, nil
}

type reader struct {
	data []byte
	off  int
	// short is set once any read runs past the end of data.
	short bool
}

func (r *reader) take(n int) []byte {
	if r.off+n > len(r.data) {
		r.off = len(r.data)
		r.short = true
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) str(n int) string {
	b := r.take(n)
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func (r *reader) i16() int16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(b))
}

func (r *reader) u16() uint16 {
	return uint16(r.i16())
}

func (r *reader) f32() float32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func (r *reader) vec3() [3]float32 {
	return [3]float32{r.f32(), r.f32(), r.f32()}
}

func (r *reader) u8() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) model() (*Model, error) {
	m := &Model{Name: r.str(32)}
	meshCount := int(r.u16())
	boneCount := int(r.u16())
	actionCount := int(r.u16())

	if meshCount > maxMeshes {
		return nil, fmt.Errorf("invalid mesh count %d", meshCount)
	}

	m.Meshes = make([]Mesh, 0, meshCount)
	for i := 0; i < meshCount; i++ {
		mesh, err := r.mesh()
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		m.Meshes = append(m.Meshes, mesh)
	}

	actionKeys := make([]int, actionCount)
	for a := range actionKeys {
		numKeys := int(r.i16())
		if lockPos := r.u8() > 0; lockPos {
			r.take(numKeys * 12)
		}
		actionKeys[a] = numKeys
	}

	m.Bones = make([]Bone, 0, boneCount)
	for b := 0; b < boneCount; b++ {
		m.Bones = append(m.Bones, r.bone(actionKeys))
	}

	if r.short {
		return nil, errors.New("truncated data")
	}
	return m, nil
}

func (r *reader) mesh() (Mesh, error) {
	nv := int(r.i16())
	nn := int(r.i16())
	ntc := int(r.i16())
	nt := int(r.i16())
	_ = r.i16() // texture index
	if nv < 0 || nn < 0 || ntc < 0 || nt < 0 {
		return Mesh{}, fmt.Errorf("negative element count")
	}

	// Vertices: node:i16, pad:i16, x, y, z:f32
	m := Mesh{
		Verts: make([][3]float32, nv),
		Nodes: make([]int16, nv),
	}
	for j := 0; j < nv; j++ {
		m.Nodes[j] = r.i16()
		_ = r.i16()
		m.Verts[j] = r.vec3()
	}

	// Normals: node:i16, pad:i16, nx, ny, nz:f32, bind:i16, pad:i16
	m.Normals = make([][3]float32, nn)
	for j := 0; j < nn; j++ {
		r.take(4)
		m.Normals[j] = r.vec3()
		r.take(4)
	}

	m.UVs = make([][2]float32, ntc)
	for j := 0; j < ntc; j++ {
		m.UVs[j] = [2]float32{r.f32(), r.f32()}
	}

	m.Tris = make([]Triangle, 0, nt)
	for j := 0; j < nt; j++ {
		b := r.take(triangleLen)
		if b == nil {
			break
		}
		tri := Triangle{Polygon: int(b[0])}
		for k := 0; k < 4; k++ {
			tri.VI[k] = int16(binary.LittleEndian.Uint16(b[2+k*2:]))
			tri.NI[k] = int16(binary.LittleEndian.Uint16(b[10+k*2:]))
			tri.TI[k] = int16(binary.LittleEndian.Uint16(b[18+k*2:]))
		}
		m.Tris = append(m.Tris, tri)
	}

	m.TexPath = strings.ReplaceAll(r.str(32), "\\", "/")
	return m, nil
}

func (r *reader) bone(actionKeys []int) Bone {
	if isDummy := r.u8() > 0; isDummy {
		return Bone{Parent: -1, IsDummy: true}
	}

	b := Bone{Name: r.str(32), Parent: int(r.i16())}
	for a, numKeys := range actionKeys {
		// Positions then rotations, numKeys × xyz each. Only action 0 key 0 is kept.
		for k := 0; k < numKeys; k++ {
			p := r.vec3()
			if a == 0 && k == 0 {
				b.BindPosition = [3]float64{float64(p[0]), float64(p[1]), float64(p[2])}
			}
		}
		for k := 0; k < numKeys; k++ {
			rot := r.vec3()
			if a == 0 && k == 0 {
				b.BindRotation = [3]float64{float64(rot[0]), float64(rot[1]), float64(rot[2])}
			}
		}
	}
	return b
}
