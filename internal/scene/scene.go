// Package scene loads a scene description: named shapes read from model files
// or given inline, each with its own object-to-world transform. A Scene is the
// geometry provider the rig evaluates against.
package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mapped-wrap/internal/bmd"
	"mapped-wrap/internal/mathutil"
	"mapped-wrap/internal/mesh"
	"mapped-wrap/internal/objfile"

	"gopkg.in/yaml.v3"
)

// ShapeSpec describes one shape in a scene file.
type ShapeSpec struct {
	Name      string       `yaml:"name" json:"name"`
	File      string       `yaml:"file" json:"file"`
	Posed     bool         `yaml:"posed" json:"posed"`
	Points    [][3]float64 `yaml:"points" json:"points"`
	Translate [3]float64   `yaml:"translate" json:"translate"`
	Rotate    [3]float64   `yaml:"rotate" json:"rotate"` // Euler XYZ degrees
	Scale     *[3]float64  `yaml:"scale" json:"scale"`
}

// File is the on-disk scene layout.
type File struct {
	Shapes []ShapeSpec `yaml:"shapes" json:"shapes"`
}

// Scene holds shapes by name.
type Scene struct {
	shapes map[string]*mesh.Shape
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{shapes: make(map[string]*mesh.Shape)}
}

// Load reads a YAML (or .json) scene file. Relative model paths resolve
// against the scene file's directory.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}

	var f File
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("scene: parse %s: %w", path, err)
	}

	return Build(f, filepath.Dir(path))
}

// Build turns a parsed scene file into shapes.
func Build(f File, dir string) (*Scene, error) {
	s := New()
	for i, spec := range f.Shapes {
		if spec.Name == "" {
			return nil, fmt.Errorf("scene: shape %d has no name", i)
		}
		if _, dup := s.shapes[spec.Name]; dup {
			return nil, fmt.Errorf("scene: duplicate shape %q", spec.Name)
		}
		shape, err := buildShape(spec, dir)
		if err != nil {
			return nil, fmt.Errorf("scene: shape %q: %w", spec.Name, err)
		}
		s.Add(shape)
	}
	return s, nil
}

func buildShape(spec ShapeSpec, dir string) (*mesh.Shape, error) {
	var shape *mesh.Shape
	switch {
	case spec.File != "" && len(spec.Points) > 0:
		return nil, fmt.Errorf("both file and points given")
	case spec.File != "":
		path := spec.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		var err error
		shape, err = readModel(path, spec)
		if err != nil {
			return nil, err
		}
	default:
		pts := make(mesh.PointSet, len(spec.Points))
		for i, p := range spec.Points {
			pts[i] = mathutil.Vec3(p)
		}
		shape = mesh.NewShape(spec.Name, pts)
	}

	scale := mathutil.Vec3{1, 1, 1}
	if spec.Scale != nil {
		scale = mathutil.Vec3(*spec.Scale)
	}
	shape.Transform = mathutil.Compose(mathutil.Vec3(spec.Translate), mathutil.Vec3(spec.Rotate), scale)
	return shape, nil
}

func readModel(path string, spec ShapeSpec) (*mesh.Shape, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return objfile.Read(path, spec.Name)
	case ".bmd":
		m, err := bmd.Parse(path)
		if err != nil {
			return nil, err
		}
		return bmd.ToShape(spec.Name, m, spec.Posed), nil
	default:
		return nil, fmt.Errorf("unsupported model format %q", filepath.Ext(path))
	}
}

// Add inserts or replaces a shape under its own name.
func (s *Scene) Add(shape *mesh.Shape) {
	s.shapes[shape.Name] = shape
}

// Shape returns the named shape.
func (s *Scene) Shape(name string) (*mesh.Shape, bool) {
	shape, ok := s.shapes[name]
	return shape, ok
}

// Names returns shape names in sorted order.
func (s *Scene) Names() []string {
	names := make([]string, 0, len(s.shapes))
	for n := range s.shapes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
