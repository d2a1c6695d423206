package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/material"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
}

// gltfMaterialExtractor converts glTF metallic-roughness materials into metal descriptors.
type gltfMaterialExtractor interface {
	// ExtractMaterial converts a material by index. Missing factors take the glTF defaults:
	// white base color, metallic 1 and roughness 1.
	//
	// Parameters:
	//   - materialIndex: the index of the material in the document
	//
	// Returns:
	//   - material.Descriptor: the converted descriptor
	//   - error: error if the index is out of range
	ExtractMaterial(materialIndex int) (material.Descriptor, error)

	// FindMaterial converts the first material with the given name.
	//
	// Parameters:
	//   - name: the material name
	//
	// Returns:
	//   - material.Descriptor: the converted descriptor
	//   - bool: false if no material has that name
	FindMaterial(name string) (material.Descriptor, bool)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterial(materialIndex int) (material.Descriptor, error) {
	doc := e.parser.Document()
	if doc == nil {
		return material.Descriptor{}, fmt.Errorf("no document loaded")
	}
	if materialIndex < 0 || materialIndex >= len(doc.Materials) {
		return material.Descriptor{}, fmt.Errorf("material index %d out of range", materialIndex)
	}

	gm := &doc.Materials[materialIndex]
	baseColor := [4]float32{1, 1, 1, 1}
	var metallic, roughness float32 = 1, 1
	if pbr := gm.PbrMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			baseColor = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			roughness = *pbr.RoughnessFactor
		}
	}

	desc := material.FromImported(gm.Name, baseColor, metallic, roughness)
	desc.DoubleSided = gm.DoubleSided
	return desc, nil
}

func (e *gltfMaterialExtractorImpl) FindMaterial(name string) (material.Descriptor, bool) {
	doc := e.parser.Document()
	if doc == nil || name == "" {
		return material.Descriptor{}, false
	}
	for i := range doc.Materials {
		if doc.Materials[i].Name == name {
			desc, err := e.ExtractMaterial(i)
			return desc, err == nil
		}
	}
	return material.Descriptor{}, false
}
