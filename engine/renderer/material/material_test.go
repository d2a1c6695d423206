package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivedColorMatchesChoice(t *testing.T) {
	colors := []string{"#f3c865", "#f1bc9e", "#ffffff", "#C6A645", "#f67d7d", "#000000"}
	for _, hex := range colors {
		t.Run(hex, func(t *testing.T) {
			c := common.MustParseHex(hex)

			band := Band(c)
			gem := Gem(c)

			assert.Equal(t, c, band.Color)
			assert.Equal(t, c, gem.Color)
			require.NoError(t, band.Validate())
			require.NoError(t, gem.Validate())
		})
	}
}

func TestGemDescriptor(t *testing.T) {
	gem := Gem(common.White)

	assert.Equal(t, KindRefraction, gem.Kind)
	assert.InDelta(t, 0.6, gem.Opacity, 1e-6)
	assert.InDelta(t, 0.02, gem.AberrationStrength, 1e-6)
	assert.False(t, gem.ToneMapped)
	assert.True(t, gem.DoubleSided)
}

func TestBandDescriptor(t *testing.T) {
	band := Band(common.White)

	assert.Equal(t, KindMetal, band.Kind)
	assert.InDelta(t, 0.15, band.Roughness, 1e-6)
	assert.InDelta(t, 1, band.Metalness, 1e-6)
	assert.InDelta(t, 1.5, band.EnvMapIntensity, 1e-6)
	assert.True(t, band.ToneMapped)
}

func TestBuilderClampsRanges(t *testing.T) {
	d := NewDescriptor(
		WithRoughness(3),
		WithMetalness(-1),
		WithOpacity(1.05),
		WithRefractionStrength(0.5),
	)

	assert.Equal(t, float32(1), d.Roughness)
	assert.Equal(t, float32(0), d.Metalness)
	assert.Equal(t, float32(1), d.Opacity)
	assert.Equal(t, float32(1), d.RefractionStrength)
	assert.NoError(t, d.Validate())
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	d := NewDescriptor()
	d.Opacity = 2
	assert.ErrorIs(t, d.Validate(), errDescriptorRange)
}

func TestDerivationReturnsIndependentValues(t *testing.T) {
	a := Gem(common.White)
	b := a
	b.Color = common.Black

	assert.Equal(t, common.White, a.Color)
}
