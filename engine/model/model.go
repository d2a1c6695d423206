package model

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// ReferenceGemCount is the number of gem instances in the reference ring: one center stone and 64 pavé stones.
const ReferenceGemCount = 65

var errIncompleteAsset = errors.New("geometry asset is incomplete")

// GeometryAsset is the ring geometry: the band, the solid-metal head, and one gem base mesh drawn once per
// instance transform. All meshes are in ring space, before the configured scale is applied.
// A GeometryAsset is read-only after construction.
type GeometryAsset struct {
	// Name identifies the asset, usually the source path.
	Name string

	// Band is the recolorable band mesh.
	Band *Mesh

	// SolidMetal is the fixed-material metal part (head, prongs). It may be nil.
	SolidMetal *Mesh

	// Gem is the base mesh shared by every gem instance.
	Gem *Mesh

	// GemInstances are the per-instance ring-space transforms of the gem base mesh.
	GemInstances []mgl32.Mat4

	// DefaultMetal is the material of SolidMetal.
	DefaultMetal material.Descriptor
}

// NewGeometryAsset creates a GeometryAsset with the specified options applied and checks that the band,
// gem mesh and at least one instance are present.
//
// Parameters:
//   - options: a variadic list of GeometryAssetBuilderOption functions to configure the asset
//
// Returns:
//   - *GeometryAsset: the new asset
//   - error: error if a required part is missing
func NewGeometryAsset(options ...GeometryAssetBuilderOption) (*GeometryAsset, error) {
	a := &GeometryAsset{DefaultMetal: material.SolidMetal()}
	for _, opt := range options {
		opt(a)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate reports whether the required parts are present.
func (a *GeometryAsset) Validate() error {
	switch {
	case a.Band == nil:
		return fmt.Errorf("%w: missing band mesh", errIncompleteAsset)
	case a.Gem == nil:
		return fmt.Errorf("%w: missing gem mesh", errIncompleteAsset)
	case len(a.GemInstances) == 0:
		return fmt.Errorf("%w: no gem instances", errIncompleteAsset)
	}
	return nil
}

// InstanceCount returns the number of gem instances.
func (a *GeometryAsset) InstanceCount() int {
	return len(a.GemInstances)
}

// TriangleCount returns the total triangle count with every gem instance expanded.
func (a *GeometryAsset) TriangleCount() int {
	n := a.Band.TriangleCount() + a.Gem.TriangleCount()*len(a.GemInstances)
	if a.SolidMetal != nil {
		n += a.SolidMetal.TriangleCount()
	}
	return n
}

// Bounds returns the ring-space bounding box of the band, the solid metal and every gem instance.
func (a *GeometryAsset) Bounds() (lo, hi mgl32.Vec3) {
	lo, hi = a.Band.BoundsMin, a.Band.BoundsMax
	grow := func(p mgl32.Vec3) {
		for k := range 3 {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	if a.SolidMetal != nil {
		grow(a.SolidMetal.BoundsMin)
		grow(a.SolidMetal.BoundsMax)
	}
	for _, t := range a.GemInstances {
		for _, c := range corners(a.Gem.BoundsMin, a.Gem.BoundsMax) {
			grow(t.Mul4x1(c.Vec4(1)).Vec3())
		}
	}
	return lo, hi
}

// Occluders returns every triangle of the asset, gems expanded, transformed by world.
// The shadow pass rasterizes these.
//
// Parameters:
//   - world: the ring-to-world transform
//
// Returns:
//   - [][3]mgl32.Vec3: world-space triangle corners
func (a *GeometryAsset) Occluders(world mgl32.Mat4) [][3]mgl32.Vec3 {
	out := make([][3]mgl32.Vec3, 0, a.TriangleCount())
	appendMesh := func(m *Mesh, t mgl32.Mat4) {
		for i := range m.TriangleCount() {
			v0, v1, v2 := m.Triangle(i)
			out = append(out, [3]mgl32.Vec3{
				t.Mul4x1(v0.Position.Vec4(1)).Vec3(),
				t.Mul4x1(v1.Position.Vec4(1)).Vec3(),
				t.Mul4x1(v2.Position.Vec4(1)).Vec3(),
			})
		}
	}
	appendMesh(a.Band, world)
	if a.SolidMetal != nil {
		appendMesh(a.SolidMetal, world)
	}
	for _, inst := range a.GemInstances {
		appendMesh(a.Gem, world.Mul4(inst))
	}
	return out
}

func corners(lo, hi mgl32.Vec3) [8]mgl32.Vec3 {
	return [8]mgl32.Vec3{
		{lo[0], lo[1], lo[2]}, {hi[0], lo[1], lo[2]}, {lo[0], hi[1], lo[2]}, {hi[0], hi[1], lo[2]},
		{lo[0], lo[1], hi[2]}, {hi[0], lo[1], hi[2]}, {lo[0], hi[1], hi[2]}, {hi[0], hi[1], hi[2]},
	}
}
