package model

import (
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// GeometryAssetBuilderOption is a functional option for configuring a GeometryAsset via NewGeometryAsset.
type GeometryAssetBuilderOption func(*GeometryAsset)

// WithName is an option builder that sets the name of the GeometryAsset.
//
// Parameters:
//   - name: the asset identifier
//
// Returns:
//   - GeometryAssetBuilderOption: a function that applies the name option to an asset
func WithName(name string) GeometryAssetBuilderOption {
	return func(a *GeometryAsset) {
		a.Name = name
	}
}

// WithBand is an option builder that sets the band mesh.
//
// Parameters:
//   - mesh: the band mesh
//
// Returns:
//   - GeometryAssetBuilderOption: a function that applies the band option to an asset
func WithBand(mesh *Mesh) GeometryAssetBuilderOption {
	return func(a *GeometryAsset) {
		a.Band = mesh
	}
}

// WithSolidMetal is an option builder that sets the solid-metal mesh.
//
// Parameters:
//   - mesh: the solid-metal mesh
//
// Returns:
//   - GeometryAssetBuilderOption: a function that applies the solid-metal option to an asset
func WithSolidMetal(mesh *Mesh) GeometryAssetBuilderOption {
	return func(a *GeometryAsset) {
		a.SolidMetal = mesh
	}
}

// WithGem is an option builder that sets the gem base mesh and its instance transforms.
//
// Parameters:
//   - mesh: the gem base mesh
//   - instances: the per-instance transforms
//
// Returns:
//   - GeometryAssetBuilderOption: a function that applies the gem option to an asset
func WithGem(mesh *Mesh, instances ...mgl32.Mat4) GeometryAssetBuilderOption {
	return func(a *GeometryAsset) {
		a.Gem = mesh
		a.GemInstances = instances
	}
}

// WithDefaultMetal is an option builder that sets the material of the solid-metal mesh.
//
// Parameters:
//   - desc: the material descriptor
//
// Returns:
//   - GeometryAssetBuilderOption: a function that applies the material option to an asset
func WithDefaultMetal(desc material.Descriptor) GeometryAssetBuilderOption {
	return func(a *GeometryAsset) {
		a.DefaultMetal = desc
	}
}
