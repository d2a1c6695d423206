package loader

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/model"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter walks a parsed glTF scene and assembles the ring parts selected by a NameMap.
type gltfImporter interface {
	// Import parses data and builds a GeometryAsset.
	//
	// Band and solid-metal nodes are baked into ring space with their world transforms and merged.
	// Every node referencing the gem mesh contributes one instance per EXT_mesh_gpu_instancing entry
	// (or one instance without the extension); the gem base mesh itself stays untransformed.
	//
	// Parameters:
	//   - data: the glTF JSON or GLB bytes
	//   - baseDir: directory for external buffers
	//   - name: the asset name
	//   - names: the node/mesh name mapping
	//
	// Returns:
	//   - *model.GeometryAsset: the assembled asset
	//   - error: error if parsing fails or a required part is missing
	Import(data []byte, baseDir, name string, names NameMap) (*model.GeometryAsset, error)
}

var _ gltfImporter = &gltfImporterImpl{}

func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

// importState collects ring parts during the node walk.
type importState struct {
	parser    gltfParser
	meshes    gltfMeshExtractor
	names     NameMap
	band      []*model.Mesh
	solid     []*model.Mesh
	solidMat  int
	gem       *model.Mesh
	gemIndex  int
	instances []mgl32.Mat4
	skipped   int
}

func (imp *gltfImporterImpl) Import(data []byte, baseDir, name string, names NameMap) (*model.GeometryAsset, error) {
	parser := newGLTFParser()
	if err := parser.Parse(data, baseDir); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	doc := parser.Document()

	st := &importState{
		parser:   parser,
		meshes:   newGLTFMeshExtractor(parser),
		names:    names.withDefaults(),
		solidMat: -1,
		gemIndex: -1,
	}
	visiting := make([]bool, len(doc.Nodes))
	for _, root := range sceneRoots(doc) {
		if err := st.walk(root, mgl32.Ident4(), visiting); err != nil {
			return nil, err
		}
	}

	options := []model.GeometryAssetBuilderOption{model.WithName(name)}
	if len(st.band) > 0 {
		options = append(options, model.WithBand(model.Merge(st.names.Band, st.band...)))
	}
	if len(st.solid) > 0 {
		options = append(options, model.WithSolidMetal(model.Merge(st.names.SolidMetal, st.solid...)))
	}
	if st.gem != nil {
		options = append(options, model.WithGem(st.gem, st.instances...))
	}
	options = append(options, model.WithDefaultMetal(st.defaultMetal(newGLTFMaterialExtractor(parser))))

	asset, err := model.NewGeometryAsset(options...)
	if err != nil {
		return nil, fmt.Errorf("%s with names %+v: %w", name, st.names, err)
	}
	log.Printf("[Loader] imported %s: %d triangles, %d gem instances, %d unmapped nodes", name, asset.TriangleCount(), asset.InstanceCount(), st.skipped)
	return asset, nil
}

func (st *importState) walk(nodeIndex int, parent mgl32.Mat4, visiting []bool) error {
	doc := st.parser.Document()
	if nodeIndex < 0 || nodeIndex >= len(doc.Nodes) {
		return fmt.Errorf("node index %d out of range", nodeIndex)
	}
	if visiting[nodeIndex] {
		return fmt.Errorf("node %d is its own ancestor", nodeIndex)
	}
	visiting[nodeIndex] = true
	defer func() { visiting[nodeIndex] = false }()

	node := &doc.Nodes[nodeIndex]
	world := parent.Mul4(nodeLocal(node))

	if node.Mesh != nil {
		if err := st.addMeshNode(node, world); err != nil {
			return fmt.Errorf("node %d %q: %w", nodeIndex, node.Name, err)
		}
	}
	for _, child := range node.Children {
		if err := st.walk(child, world, visiting); err != nil {
			return err
		}
	}
	return nil
}

func (st *importState) addMeshNode(node *gltfNode, world mgl32.Mat4) error {
	doc := st.parser.Document()
	meshIndex := *node.Mesh
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return fmt.Errorf("mesh index %d out of range", meshIndex)
	}
	meshName := doc.Meshes[meshIndex].Name
	matches := func(key string) bool {
		return key != "" && (node.Name == key || meshName == key)
	}

	var part *[]*model.Mesh
	switch {
	case matches(st.names.Gem):
	case matches(st.names.Band):
		part = &st.band
	case matches(st.names.SolidMetal):
		part = &st.solid
	default:
		st.skipped++
		return nil
	}

	mesh, materialIndex, err := st.meshes.ExtractMesh(meshIndex)
	if err != nil {
		return err
	}
	transforms, err := st.instanceTransforms(node, world)
	if err != nil {
		return err
	}

	if part == nil {
		if st.gem != nil && st.gemIndex != meshIndex {
			log.Printf("[Loader] ignoring second gem mesh %q; instances of %q already collected", meshName, st.gem.Name)
			return nil
		}
		st.gem, st.gemIndex = mesh, meshIndex
		st.instances = append(st.instances, transforms...)
		return nil
	}

	if part == &st.solid && st.solidMat < 0 {
		st.solidMat = materialIndex
	}
	for _, t := range transforms {
		*part = append(*part, mesh.Transformed(t))
	}
	return nil
}

// instanceTransforms returns world for a plain node, or world times each instance TRS for a node
// carrying EXT_mesh_gpu_instancing.
func (st *importState) instanceTransforms(node *gltfNode, world mgl32.Mat4) ([]mgl32.Mat4, error) {
	if node.Extensions == nil || node.Extensions.Instancing == nil {
		return []mgl32.Mat4{world}, nil
	}
	attrs := node.Extensions.Instancing.Attributes

	var translations, scales [][3]float32
	var rotations [][4]float32
	var err error
	count := -1
	if idx, ok := attrs["TRANSLATION"]; ok {
		if translations, err = st.parser.ReadVec3Accessor(idx); err != nil {
			return nil, fmt.Errorf("instancing TRANSLATION: %w", err)
		}
		count = len(translations)
	}
	if idx, ok := attrs["ROTATION"]; ok {
		if rotations, err = st.parser.ReadVec4Accessor(idx); err != nil {
			return nil, fmt.Errorf("instancing ROTATION: %w", err)
		}
		count = max(count, len(rotations))
	}
	if idx, ok := attrs["SCALE"]; ok {
		if scales, err = st.parser.ReadVec3Accessor(idx); err != nil {
			return nil, fmt.Errorf("instancing SCALE: %w", err)
		}
		count = max(count, len(scales))
	}
	if count < 0 {
		return []mgl32.Mat4{world}, nil
	}

	out := make([]mgl32.Mat4, count)
	for i := range out {
		t, r, s := [3]float32{}, [4]float32{0, 0, 0, 1}, [3]float32{1, 1, 1}
		if i < len(translations) {
			t = translations[i]
		}
		if i < len(rotations) {
			r = rotations[i]
		}
		if i < len(scales) {
			s = scales[i]
		}
		out[i] = world.Mul4(trs(t, r, s))
	}
	return out, nil
}

func (st *importState) defaultMetal(materials gltfMaterialExtractor) material.Descriptor {
	if desc, ok := materials.FindMaterial(st.names.DefaultMetal); ok {
		return desc
	}
	if st.solidMat >= 0 {
		if desc, err := materials.ExtractMaterial(st.solidMat); err == nil {
			return desc
		}
	}
	return material.SolidMetal()
}

// sceneRoots returns the root nodes of the default scene, or every parentless node when the
// document declares no scene.
func sceneRoots(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			s = *doc.Scene
		}
		return doc.Scenes[s].Nodes
	}
	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

func nodeLocal(n *gltfNode) mgl32.Mat4 {
	if n.Matrix != nil {
		return mgl32.Mat4(*n.Matrix)
	}
	t, r, s := [3]float32{}, [4]float32{0, 0, 0, 1}, [3]float32{1, 1, 1}
	if n.Translation != nil {
		t = *n.Translation
	}
	if n.Rotation != nil {
		r = *n.Rotation
	}
	if n.Scale != nil {
		s = *n.Scale
	}
	return trs(t, r, s)
}

func trs(t [3]float32, r [4]float32, s [3]float32) mgl32.Mat4 {
	q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}.Normalize()
	return common.Compose(mgl32.Vec3(t), q.Mat4(), mgl32.Vec3(s))
}
