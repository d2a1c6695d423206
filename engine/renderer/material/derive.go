package material

import "github.com/Carmen-Shannon/oxy-jewel/common"

// Reference parameters for the three ring parts.
const (
	BandRoughness       float32 = 0.15
	BandEnvMapIntensity float32 = 1.5

	GemIOR        float32 = 2.4
	GemAberration float32 = 0.02
	GemOpacity    float32 = 0.6

	SolidMetalRoughness float32 = 0.2
)

// Names used in asset material tables.
const (
	NameBand       = "band"
	NameSolidMetal = "WhiteMetal"
	NameGem        = "gem"
)

// Band derives the band material for the chosen band color.
func Band(color common.Color) Descriptor {
	return NewDescriptor(
		WithName(NameBand),
		WithKind(KindMetal),
		WithColor(color),
		WithRoughness(BandRoughness),
		WithMetalness(1),
		WithEnvMapIntensity(BandEnvMapIntensity),
	)
}

// Gem derives the shared gemstone material for the chosen gem color. Every instance of the gem
// mesh is drawn with this one descriptor.
func Gem(color common.Color) Descriptor {
	return NewDescriptor(
		WithName(NameGem),
		WithKind(KindRefraction),
		WithColor(color),
		WithRoughness(0),
		WithMetalness(0),
		WithRefractionStrength(GemIOR),
		WithAberrationStrength(GemAberration),
		WithOpacity(GemOpacity),
		WithToneMapped(false),
		WithDoubleSided(true),
	)
}

// SolidMetal is the neutral white metal used when the asset does not provide its own default
// metal material.
func SolidMetal() Descriptor {
	return NewDescriptor(
		WithName(NameSolidMetal),
		WithKind(KindMetal),
		WithColor(common.Color{0.9, 0.9, 0.9}),
		WithRoughness(SolidMetalRoughness),
		WithMetalness(1),
	)
}

// FromImported converts a material read from an asset file into a metal Descriptor.
//
// Parameters:
//   - name: the material name
//   - baseColor: the linear RGBA base color factor
//   - metallic: the metallic factor
//   - roughness: the roughness factor
//
// Returns:
//   - Descriptor: the converted descriptor
func FromImported(name string, baseColor [4]float32, metallic, roughness float32) Descriptor {
	return NewDescriptor(
		WithName(name),
		WithKind(KindMetal),
		WithColor(common.Color{baseColor[0], baseColor[1], baseColor[2]}),
		WithMetalness(metallic),
		WithRoughness(roughness),
		WithOpacity(baseColor[3]),
	)
}
