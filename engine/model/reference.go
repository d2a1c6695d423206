package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/material"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Reference ring dimensions in ring units. The configured scale of 0.1 brings the ring to roughly two world units.
const (
	bandRadius      = 9.0
	bandThickness   = 0.8
	bandWidth       = 1.1
	headBase        = 9.6
	headTop         = 11.6
	centerGemHeight = 11.8
	centerGemScale  = 2.2
	paveGemScale    = 0.4
	paveRows        = 2
	pavePerRow      = 16
)

var referenceRing = sync.OnceValue(buildReferenceRing)

// ReferenceRing returns the procedural reference ring: a torus band lying in the XY plane with its hole along Z,
// a cathedral head at the top, a brilliant-cut center stone and 64 pavé stones set in two rows down each
// shoulder. The returned asset is shared and must not be modified.
func ReferenceRing() *GeometryAsset {
	return referenceRing()
}

func buildReferenceRing() *GeometryAsset {
	instances := make([]mgl32.Mat4, 0, ReferenceGemCount)
	instances = append(instances, mgl32.Translate3D(0, centerGemHeight, 0).Mul4(mgl32.Scale3D(centerGemScale, centerGemScale, centerGemScale)))
	for _, side := range []float32{-1, 1} {
		for row := range paveRows {
			z := (float32(row) - 0.5) * bandWidth * 0.8
			for k := range pavePerRow {
				theta := mgl32.DegToRad(20 + float32(k)*100/(pavePerRow-1))
				dir := mgl32.Vec3{side * math32.Sin(theta), math32.Cos(theta), 0}
				pos := dir.Mul(bandRadius + bandThickness + 0.05).Add(mgl32.Vec3{0, 0, z})
				instances = append(instances, common.Compose(pos, mgl32.HomogRotate3DZ(-side*theta), mgl32.Vec3{paveGemScale, paveGemScale, paveGemScale}))
			}
		}
	}

	asset, err := NewGeometryAsset(
		WithName("reference"),
		WithBand(Torus("band", bandRadius, bandThickness, bandWidth, 64, 12)),
		WithSolidMetal(cathedralHead("head", 24)),
		WithGem(BrilliantCut("gem"), instances...),
		WithDefaultMetal(material.SolidMetal()),
	)
	if err != nil {
		panic(err)
	}
	return asset
}

// Torus builds a ring around the Z axis with an elliptical cross-section of radial half-thickness a
// and axial half-width b.
func Torus(name string, radius, a, b float32, segments, tubeSegments int) *Mesh {
	var vertices []Vertex
	for i := range segments {
		u := 2 * math32.Pi * float32(i) / float32(segments)
		radial := mgl32.Vec3{math32.Cos(u), math32.Sin(u), 0}
		center := radial.Mul(radius)
		for j := range tubeSegments {
			v := 2 * math32.Pi * float32(j) / float32(tubeSegments)
			cv, sv := math32.Cos(v), math32.Sin(v)
			p := center.Add(radial.Mul(a * cv)).Add(mgl32.Vec3{0, 0, b * sv})
			n := radial.Mul(cv / a).Add(mgl32.Vec3{0, 0, sv / b})
			vertices = append(vertices, Vertex{Position: p, Normal: common.SafeNormalize(n)})
		}
	}

	var indices []uint32
	at := func(i, j int) uint32 {
		return uint32((i%segments)*tubeSegments + j%tubeSegments)
	}
	for i := range segments {
		for j := range tubeSegments {
			a0, a1 := at(i, j), at(i+1, j)
			b0, b1 := at(i, j+1), at(i+1, j+1)
			indices = append(indices, a0, a1, b1, a0, b1, b0)
		}
	}
	m, _ := NewMesh(name, vertices, indices)
	return m
}

// cathedralHead builds the open basket under the center stone as a flared frustum with a closed base.
func cathedralHead(name string, segments int) *Mesh {
	const bottomRadius, topRadius = 1.4, 2.0
	vertices := []Vertex{{Position: mgl32.Vec3{0, headBase, 0}}}
	for i := range segments {
		a := 2 * math32.Pi * float32(i) / float32(segments)
		c, s := math32.Cos(a), math32.Sin(a)
		vertices = append(vertices,
			Vertex{Position: mgl32.Vec3{c * bottomRadius, headBase, s * bottomRadius}},
			Vertex{Position: mgl32.Vec3{c * topRadius, headTop, s * topRadius}},
		)
	}

	var indices []uint32
	for i := range segments {
		b0, t0 := uint32(1+2*i), uint32(2+2*i)
		b1, t1 := uint32(1+2*((i+1)%segments)), uint32(2+2*((i+1)%segments))
		indices = append(indices, b0, t0, t1, b0, t1, b1)
		indices = append(indices, 0, b0, b1)
	}
	orientOutward(vertices, indices, mgl32.Vec3{0, (headBase + headTop) / 2, 0})
	ComputeNormals(vertices, indices)
	m, _ := NewMesh(name, vertices, indices)
	return m
}

// BrilliantCut builds a faceted round stone of unit girdle radius: an octagonal table at y=0.3, a
// sixteen-sided girdle at y=0 and a culet at y=-0.85. Facets are flat shaded.
func BrilliantCut(name string) *Mesh {
	const (
		tableHeight = 0.3
		tableRadius = 0.55
		culetDepth  = -0.85
	)
	table := func(i int) mgl32.Vec3 {
		a := 2 * math32.Pi * float32(i%8) / 8
		return mgl32.Vec3{math32.Cos(a) * tableRadius, tableHeight, math32.Sin(a) * tableRadius}
	}
	girdle := func(j int) mgl32.Vec3 {
		a := 2 * math32.Pi * float32(j%16) / 16
		return mgl32.Vec3{math32.Cos(a), 0, math32.Sin(a)}
	}
	top := mgl32.Vec3{0, tableHeight, 0}
	culet := mgl32.Vec3{0, culetDepth, 0}

	var faces [][3]mgl32.Vec3
	for i := range 8 {
		faces = append(faces,
			[3]mgl32.Vec3{top, table(i), table(i + 1)},
			[3]mgl32.Vec3{table(i), girdle(2 * i), girdle(2*i + 1)},
			[3]mgl32.Vec3{table(i), girdle(2*i + 1), table(i + 1)},
			[3]mgl32.Vec3{table(i + 1), girdle(2*i + 1), girdle(2*i + 2)},
		)
	}
	for j := range 16 {
		faces = append(faces, [3]mgl32.Vec3{girdle(j), culet, girdle(j + 1)})
	}

	vertices := make([]Vertex, 0, len(faces)*3)
	indices := make([]uint32, 0, len(faces)*3)
	for _, f := range faces {
		n := common.SafeNormalize(f[1].Sub(f[0]).Cross(f[2].Sub(f[0])))
		centroid := f[0].Add(f[1]).Add(f[2]).Mul(1.0 / 3)
		if n.Dot(centroid) < 0 {
			f[1], f[2] = f[2], f[1]
			n = n.Mul(-1)
		}
		base := uint32(len(vertices))
		for _, p := range f {
			vertices = append(vertices, Vertex{Position: p, Normal: n})
		}
		indices = append(indices, base, base+1, base+2)
	}
	m, _ := NewMesh(name, vertices, indices)
	return m
}

// orientOutward flips triangles whose winding faces toward center.
func orientOutward(vertices []Vertex, indices []uint32, center mgl32.Vec3) {
	for i := 0; i+2 < len(indices); i += 3 {
		p0 := vertices[indices[i]].Position
		p1 := vertices[indices[i+1]].Position
		p2 := vertices[indices[i+2]].Position
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		c := p0.Add(p1).Add(p2).Mul(1.0 / 3).Sub(center)
		if n.Dot(c) < 0 {
			indices[i+1], indices[i+2] = indices[i+2], indices[i+1]
		}
	}
}
