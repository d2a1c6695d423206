package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/model"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
	cache  map[int]*model.Mesh
}

// gltfMeshExtractor converts glTF meshes into model.Mesh values. All triangle primitives of a glTF
// mesh are merged into one Mesh.
type gltfMeshExtractor interface {
	// ExtractMesh extracts a mesh by index. Repeated calls for the same index return the same *model.Mesh.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//
	// Returns:
	//   - *model.Mesh: the merged mesh in mesh-local space
	//   - int: the material index of the first primitive, or -1
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int) (*model.Mesh, int, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser, cache: make(map[int]*model.Mesh)}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int) (*model.Mesh, int, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, -1, fmt.Errorf("no document loaded")
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, -1, fmt.Errorf("mesh index %d out of range", meshIndex)
	}
	gm := &doc.Meshes[meshIndex]
	materialIndex := -1
	if len(gm.Primitives) > 0 && gm.Primitives[0].Material != nil {
		materialIndex = *gm.Primitives[0].Material
	}
	if m, ok := e.cache[meshIndex]; ok {
		return m, materialIndex, nil
	}

	var vertices []model.Vertex
	var indices []uint32
	for primIdx := range gm.Primitives {
		pv, pi, err := e.extractPrimitive(&gm.Primitives[primIdx])
		if err != nil {
			return nil, -1, fmt.Errorf("mesh %d %q primitive %d: %w", meshIndex, gm.Name, primIdx, err)
		}
		base := uint32(len(vertices))
		vertices = append(vertices, pv...)
		for _, idx := range pi {
			indices = append(indices, idx+base)
		}
	}

	m, err := model.NewMesh(gm.Name, vertices, indices)
	if err != nil {
		return nil, -1, fmt.Errorf("mesh %d: %w", meshIndex, err)
	}
	e.cache[meshIndex] = m
	return m, materialIndex, nil
}

func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive) ([]model.Vertex, []uint32, error) {
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return nil, nil, fmt.Errorf("unsupported primitive mode: %d (only triangles supported)", *prim.Mode)
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, nil, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := e.parser.ReadVec3Accessor(posAccessor)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read positions: %w", err)
	}

	vertices := make([]model.Vertex, len(positions))
	for i, p := range positions {
		vertices[i].Position = p
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = e.parser.ReadIndicesAccessor(*prim.Indices); err != nil {
			return nil, nil, fmt.Errorf("failed to read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	normalAccessor, ok := prim.Attributes["NORMAL"]
	if !ok {
		model.ComputeNormals(vertices, indices)
		return vertices, indices, nil
	}
	normals, err := e.parser.ReadVec3Accessor(normalAccessor)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read normals: %w", err)
	}
	if len(normals) != len(vertices) {
		return nil, nil, fmt.Errorf("normal count %d does not match position count %d", len(normals), len(vertices))
	}
	for i, n := range normals {
		vertices[i].Normal = common.SafeNormalize(n)
	}
	return vertices, indices, nil
}
