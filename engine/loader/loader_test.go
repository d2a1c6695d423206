package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-jewel/engine/model"
	"github.com/Carmen-Shannon/oxy-jewel/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBuffer holds one triangle (positions, uint16 indices) followed by three instance translations.
func testBuffer() []byte {
	var buf bytes.Buffer
	floats := func(vs ...float32) {
		for _, v := range vs {
			_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(v))
		}
	}
	floats(0, 0, 0, 1, 0, 0, 0, 1, 0)
	_ = binary.Write(&buf, binary.LittleEndian, []uint16{0, 1, 2, 0})
	floats(1, 0, 0, 0, 2, 0, 0, 0, 3)
	return buf.Bytes()
}

func testDocument(bufferURI string, required ...string) map[string]any {
	doc := map[string]any{
		"asset": map[string]any{"version": "2.0"},
		"scene": 0,
		"scenes": []any{
			map[string]any{"nodes": []int{0}},
		},
		"nodes": []any{
			map[string]any{"name": "root", "translation": []float32{0, 1, 0}, "children": []int{1, 2, 3, 4, 5}},
			map[string]any{"name": "mesh_0", "mesh": 0},
			map[string]any{"name": "mesh_9", "mesh": 1},
			map[string]any{"name": "stones", "mesh": 2, "extensions": map[string]any{
				"EXT_mesh_gpu_instancing": map[string]any{"attributes": map[string]int{"TRANSLATION": 2}},
			}},
			map[string]any{"name": "center", "mesh": 2, "scale": []float32{2, 2, 2}},
			map[string]any{"name": "decoration", "mesh": 3},
		},
		"meshes": []any{
			map[string]any{"name": "band_mesh", "primitives": []any{map[string]any{"attributes": map[string]int{"POSITION": 0}, "indices": 1}}},
			map[string]any{"name": "metal_mesh", "primitives": []any{map[string]any{"attributes": map[string]int{"POSITION": 0}, "indices": 1, "material": 0}}},
			map[string]any{"name": "mesh_4", "primitives": []any{map[string]any{"attributes": map[string]int{"POSITION": 0}, "indices": 1}}},
			map[string]any{"name": "other", "primitives": []any{map[string]any{"attributes": map[string]int{"POSITION": 0}}}},
		},
		"materials": []any{
			map[string]any{"name": "Steel", "pbrMetallicRoughness": map[string]any{"metallicFactor": 1, "roughnessFactor": 0.5}},
			map[string]any{"name": "WhiteMetal", "pbrMetallicRoughness": map[string]any{
				"baseColorFactor": []float32{0.8, 0.8, 0.8, 1}, "metallicFactor": 1, "roughnessFactor": 0.3,
			}},
		},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": gltfComponentTypeFloat, "count": 3, "type": "VEC3"},
			map[string]any{"bufferView": 1, "componentType": gltfComponentTypeUnsignedShort, "count": 3, "type": "SCALAR"},
			map[string]any{"bufferView": 2, "componentType": gltfComponentTypeFloat, "count": 3, "type": "VEC3"},
		},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			map[string]any{"buffer": 0, "byteOffset": 36, "byteLength": 6},
			map[string]any{"buffer": 0, "byteOffset": 44, "byteLength": 36},
		},
		"buffers": []any{
			map[string]any{"byteLength": 80},
		},
	}
	if bufferURI != "" {
		doc["buffers"] = []any{map[string]any{"byteLength": 80, "uri": bufferURI}}
	}
	if len(required) > 0 {
		doc["extensionsRequired"] = required
	}
	return doc
}

func buildGLB(t *testing.T, doc map[string]any, bin []byte) []byte {
	t.Helper()
	js, err := json.Marshal(doc)
	require.NoError(t, err)
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	var out bytes.Buffer
	total := 12 + 8 + len(js) + 8 + len(bin)
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)})
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(js)), ChunkType: gltfGLBChunkJSON})
	out.Write(js)
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN})
	out.Write(bin)
	return out.Bytes()
}

func writeGLB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ring.glb")
	require.NoError(t, os.WriteFile(path, buildGLB(t, testDocument(""), testBuffer()), 0o644))
	return path
}

func TestLoadGLB(t *testing.T) {
	l := NewLoader(BackendTypeGLTF, WithNameMap(NameMap{Gem: "mesh_4"}))
	asset, err := l.Load(context.Background(), writeGLB(t))
	require.NoError(t, err)

	require.NotNil(t, asset.Band)
	assert.Equal(t, 1, asset.Band.TriangleCount())
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, asset.Band.Vertices[1].Position)
	require.NotNil(t, asset.SolidMetal)

	// Three instanced stones plus the scaled center stone.
	require.Equal(t, 4, asset.InstanceCount())
	origin := mgl32.Vec4{0, 0, 0, 1}
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, asset.GemInstances[0].Mul4x1(origin).Vec3())
	assert.Equal(t, mgl32.Vec3{0, 3, 0}, asset.GemInstances[1].Mul4x1(origin).Vec3())
	assert.Equal(t, mgl32.Vec3{0, 1, 3}, asset.GemInstances[2].Mul4x1(origin).Vec3())
	assert.Equal(t, mgl32.Vec3{2, 1, 0}, asset.GemInstances[3].Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3())
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, asset.Gem.Vertices[1].Position, "gem base mesh stays in mesh space")

	assert.Equal(t, "WhiteMetal", asset.DefaultMetal.Name)
	assert.InDelta(t, 0.3, asset.DefaultMetal.Roughness, 1e-6)
	assert.InDelta(t, 0.8, asset.DefaultMetal.Color[0], 1e-6)
}

func TestLoadIsCached(t *testing.T) {
	path := writeGLB(t)
	l := NewLoader(BackendTypeGLTF)

	a, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	b, err := l.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Same(t, a, l.Get(path))
	assert.EqualValues(t, 1, l.Loads())
}

func TestLoadMissingFile(t *testing.T) {
	path := writeGLB(t)
	l := NewLoader(BackendTypeGLTF)
	good, err := l.Load(context.Background(), path)
	require.NoError(t, err)

	_, err = l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.glb"))
	var le *resource.ResourceLoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "geometry", le.Kind)
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Same(t, good, l.Get(path))
}

func TestLoadReaderDataURI(t *testing.T) {
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(testBuffer())
	js, err := json.Marshal(testDocument(uri))
	require.NoError(t, err)

	l := NewLoader(BackendTypeGLTF)
	asset, err := l.LoadReader("inline", bytes.NewReader(js))
	require.NoError(t, err)
	assert.Equal(t, 4, asset.InstanceCount())

	again, err := l.LoadReader("inline", bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Same(t, asset, again)
}

func TestLoadMissingPart(t *testing.T) {
	l := NewLoader(BackendTypeGLTF, WithNameMap(NameMap{Gem: "no_such_node"}))
	_, err := l.LoadReader("ring.glb", bytes.NewReader(buildGLB(t, testDocument(""), testBuffer())))

	var le *resource.ResourceLoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, err.Error(), "gem")
	assert.Nil(t, l.Get("ring.glb"))
}

func TestLoadRejectsBadContainers(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	_, err := l.LoadReader("ext.glb", bytes.NewReader(buildGLB(t, testDocument("", "KHR_draco_mesh_compression"), testBuffer())))
	assert.ErrorIs(t, err, errUnsupportedExt)

	bad := buildGLB(t, testDocument(""), testBuffer())
	binary.LittleEndian.PutUint32(bad[4:], 1)
	_, err = l.LoadReader("v1.glb", bytes.NewReader(bad))
	assert.ErrorIs(t, err, errInvalidGLBVersion)

	_, err = l.LoadReader("notes.txt", bytes.NewReader([]byte("not a model")))
	assert.ErrorIs(t, err, errUnsupportedModel)
}

func TestPreloadedAsset(t *testing.T) {
	ring := model.ReferenceRing()
	l := NewLoader(BackendTypeGLTF, WithAsset("reference", ring))

	got, err := l.Load(context.Background(), "reference")
	require.NoError(t, err)
	assert.Same(t, ring, got)
	assert.Zero(t, l.Loads())
}

func TestNameMapDefaults(t *testing.T) {
	l := NewLoader(BackendTypeGLTF, WithNameMap(NameMap{Band: "band"}))
	assert.Equal(t, NameMap{Band: "band", SolidMetal: "mesh_9", Gem: "mesh_4", DefaultMetal: "WhiteMetal"}, l.NameMap())
}
