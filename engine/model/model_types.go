package model

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	errEmptyMesh          = errors.New("mesh has no triangles")
	errIndexOutOfRange    = errors.New("mesh index out of range")
	errIncompleteTriangle = errors.New("mesh index count is not a multiple of 3")
)

// Vertex is a single mesh vertex in model space.
type Vertex struct {
	// Position is the vertex position.
	Position mgl32.Vec3

	// Normal is the unit surface normal.
	Normal mgl32.Vec3
}

// Mesh is an indexed triangle list. A Mesh is read-only once built and may be shared between
// draws and goroutines.
type Mesh struct {
	// Name is the mesh identifier, usually the source node or mesh name.
	Name string

	// Vertices are the mesh vertices.
	Vertices []Vertex

	// Indices are triangle indices into Vertices, three per triangle.
	Indices []uint32

	// BoundsMin is the minimum corner of the axis-aligned bounding box.
	BoundsMin mgl32.Vec3

	// BoundsMax is the maximum corner of the axis-aligned bounding box.
	BoundsMax mgl32.Vec3
}

// NewMesh validates the index list and computes the bounding box.
//
// Parameters:
//   - name: the mesh identifier
//   - vertices: the vertex list
//   - indices: the triangle index list
//
// Returns:
//   - *Mesh: the new mesh
//   - error: error if the mesh is empty or an index is out of range
func NewMesh(name string, vertices []Vertex, indices []uint32) (*Mesh, error) {
	if len(indices) == 0 || len(vertices) == 0 {
		return nil, fmt.Errorf("%w: %q", errEmptyMesh, name)
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %q has %d indices", errIncompleteTriangle, name, len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("%w: %q index %d >= %d vertices", errIndexOutOfRange, name, idx, len(vertices))
		}
	}
	m := &Mesh{Name: name, Vertices: vertices, Indices: indices}
	m.BoundsMin, m.BoundsMax = bounds(vertices)
	return m, nil
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the three vertices of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c Vertex) {
	return m.Vertices[m.Indices[i*3]], m.Vertices[m.Indices[i*3+1]], m.Vertices[m.Indices[i*3+2]]
}

// Transformed returns a copy of the mesh with every vertex moved by t. Normals use the inverse
// transpose of t and stay unit length.
func (m *Mesh) Transformed(t mgl32.Mat4) *Mesh {
	nm := common.NormalMatrix(t)
	out := &Mesh{
		Name:     m.Name,
		Vertices: make([]Vertex, len(m.Vertices)),
		Indices:  m.Indices,
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = Vertex{
			Position: common.TransformPoint(t, v.Position),
			Normal:   common.TransformNormal(nm, v.Normal),
		}
	}
	out.BoundsMin, out.BoundsMax = bounds(out.Vertices)
	return out
}

// Merge concatenates meshes into one, re-basing indices.
func Merge(name string, meshes ...*Mesh) *Mesh {
	out := &Mesh{Name: name}
	for _, m := range meshes {
		if m == nil {
			continue
		}
		base := uint32(len(out.Vertices))
		out.Vertices = append(out.Vertices, m.Vertices...)
		for _, idx := range m.Indices {
			out.Indices = append(out.Indices, idx+base)
		}
	}
	out.BoundsMin, out.BoundsMax = bounds(out.Vertices)
	return out
}

// ComputeNormals fills smooth per-vertex normals from area-weighted face normals.
func ComputeNormals(vertices []Vertex, indices []uint32) {
	acc := make([]mgl32.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		e1 := vertices[i1].Position.Sub(vertices[i0].Position)
		e2 := vertices[i2].Position.Sub(vertices[i0].Position)
		n := e1.Cross(e2)
		acc[i0] = acc[i0].Add(n)
		acc[i1] = acc[i1].Add(n)
		acc[i2] = acc[i2].Add(n)
	}
	for i := range vertices {
		vertices[i].Normal = common.SafeNormalize(acc[i])
	}
}

func bounds(vertices []Vertex) (lo, hi mgl32.Vec3) {
	if len(vertices) == 0 {
		return lo, hi
	}
	lo, hi = vertices[0].Position, vertices[0].Position
	for _, v := range vertices[1:] {
		for k := range 3 {
			lo[k] = min(lo[k], v.Position[k])
			hi[k] = max(hi[k], v.Position[k])
		}
	}
	return lo, hi
}
