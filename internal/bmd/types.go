package bmd

// Triangle holds polygon type and index quads into vertex/normal/texcoord arrays.
// Polygon == 4 means quad (two triangles: 0-1-2 and 0-2-3).
type Triangle struct {
	Polygon int
	VI      [4]int16
	NI      [4]int16
	TI      [4]int16
}

// Mesh holds parsed geometry for one sub-mesh within a BMD file.
type Mesh struct {
	Verts   [][3]float32
	Nodes   []int16 // bone index per vertex
	Normals [][3]float32
	UVs     [][2]float32
	Tris    []Triangle
	TexPath string
}

// Bone holds bind-pose data for one bone in the skeleton hierarchy.
type Bone struct {
	Name         string
	Parent       int
	IsDummy      bool
	BindPosition [3]float64
	BindRotation [3]float64 // Euler XYZ radians
}

// Model is a parsed BMD file.
type Model struct {
	Name    string
	Version byte
	Meshes  []Mesh
	Bones   []Bone
}

// VertexCount returns the number of vertices across all sub-meshes.
func (m *Model) VertexCount() int {
	n := 0
	for i := range m.Meshes {
		n += len(m.Meshes[i].Verts)
	}
	return n
}
