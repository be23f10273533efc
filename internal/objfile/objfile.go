// Package objfile reads and writes the vertex and face records of Wavefront
// OBJ files. Normals, texture coordinates, groups and materials are ignored.
package objfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"mapped-wrap/internal/mathutil"
	"mapped-wrap/internal/mesh"
)

// Read loads an OBJ file as a shape with an identity transform.
func Read(path, name string) (*mesh.Shape, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("objfile: open %s: %w", path, err)
	}
	defer f.Close()

	s, err := Decode(f, name)
	if err != nil {
		return nil, fmt.Errorf("objfile: %s: %w", path, err)
	}
	return s, nil
}

// Decode parses OBJ text. Polygons are fan-triangulated.
func Decode(r io.Reader, name string) (*mesh.Shape, error) {
	s := mesh.NewShape(name, nil)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", line)
			}
			var p mathutil.Vec3
			for k := 0; k < 3; k++ {
				v, err := strconv.ParseFloat(fields[1+k], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				p[k] = v
			}
			s.Points = append(s.Points, p)
		case "f":
			idx := make([]int, 0, len(fields)-1)
			for _, f := range fields[1:] {
				i, err := faceIndex(f, len(s.Points))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				idx = append(idx, i)
			}
			for k := 2; k < len(idx); k++ {
				s.Tris = append(s.Tris, mesh.Triangle{idx[0], idx[k-1], idx[k]})
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// faceIndex converts a 1-based (or negative, relative) "v/vt/vn" reference.
func faceIndex(ref string, count int) (int, error) {
	v, _, _ := strings.Cut(ref, "/")
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", ref)
	}
	if i < 0 {
		i = count + i
	} else {
		i--
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("face index %q out of range", ref)
	}
	return i, nil
}

// Encode writes points and the shape's triangles. points replaces the shape's
// own points, so an evaluated result can be written with the base topology.
func Encode(w io.Writer, s *mesh.Shape, points mesh.PointSet) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "o %s\n", s.Name)
	for _, p := range points {
		fmt.Fprintf(bw, "v %s %s %s\n", ftoa(p[0]), ftoa(p[1]), ftoa(p[2]))
	}
	for _, t := range s.Tris {
		if t[0] >= len(points) || t[1] >= len(points) || t[2] >= len(points) {
			continue
		}
		fmt.Fprintf(bw, "f %d %d %d\n", t[0]+1, t[1]+1, t[2]+1)
	}
	return bw.Flush()
}

// Write creates path and encodes into it.
func Write(path string, s *mesh.Shape, points mesh.PointSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("objfile: create %s: %w", path, err)
	}
	if err := Encode(f, s, points); err != nil {
		f.Close()
		return fmt.Errorf("objfile: write %s: %w", path, err)
	}
	return f.Close()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
