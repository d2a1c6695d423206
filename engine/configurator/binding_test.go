package configurator

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/config"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingShadow struct {
	tints       []common.Color
	invalidated int
}

func (r *recordingShadow) SetTint(c common.Color) { r.tints = append(r.tints, c) }
func (r *recordingShadow) Invalidate() { r.invalidated++ }

var (
	gold = common.MustParseHex("#f3c865")
	rose = common.MustParseHex("#f67d7d")
)

func TestSetBandColorDerivesBandMaterial(t *testing.T) {
	b, err := NewBinding()
	require.NoError(t, err)

	require.NoError(t, b.SetBandColor(gold))
	snap := b.Snapshot()

	assert.Equal(t, gold, snap.Configuration.BandColor)
	assert.Equal(t, gold, snap.Band.Color)
	assert.Equal(t, uint64(1), snap.Revision)
	assert.NoError(t, snap.Band.Validate())
}

func TestGemColorRetintsCoupledShadow(t *testing.T) {
	shadow := &recordingShadow{}
	b, err := NewBinding(WithShadowTarget(shadow))
	require.NoError(t, err)
	require.Equal(t, []common.Color{common.White}, shadow.tints)

	require.NoError(t, b.SetGemColor(rose))

	assert.Equal(t, []common.Color{common.White, rose}, shadow.tints)
	assert.Equal(t, rose, b.ShadowTint())
	assert.Equal(t, rose, b.Snapshot().Gem.Color)
}

func TestUncoupledShadowKeepsTint(t *testing.T) {
	shadow := &recordingShadow{}
	b, err := NewBinding(
		WithShadowTintCoupling(false),
		WithShadowTint(common.Black),
		WithShadowTarget(shadow),
	)
	require.NoError(t, err)

	require.NoError(t, b.SetGemColor(rose))
	assert.Equal(t, common.Black, b.ShadowTint())
	assert.Equal(t, []common.Color{common.Black}, shadow.tints)

	b.SetShadowTint(rose)
	assert.Equal(t, []common.Color{common.Black, rose}, shadow.tints)
}

func TestSameValueIsNoOp(t *testing.T) {
	shadow := &recordingShadow{}
	b, err := NewBinding(WithShadowTarget(shadow))
	require.NoError(t, err)

	require.NoError(t, b.SetGemColor(common.White))
	require.NoError(t, b.SetScale(1))
	require.NoError(t, b.SetBandColor(common.White))
	b.SetShadowTint(common.White)

	assert.Len(t, shadow.tints, 1)
	assert.Zero(t, shadow.invalidated)
	assert.Zero(t, b.Snapshot().Revision)
}

func TestSetScaleInvalidatesShadow(t *testing.T) {
	shadow := &recordingShadow{}
	b, err := NewBinding(WithShadowTarget(shadow))
	require.NoError(t, err)

	require.NoError(t, b.SetScale(0.1))
	assert.Equal(t, 1, shadow.invalidated)
	assert.Equal(t, float32(0.1), b.Configuration().Scale)
}

func TestOutOfRangeKeepsPriorConfiguration(t *testing.T) {
	shadow := &recordingShadow{}
	b, err := NewBinding(
		WithConfiguration(RingConfiguration{BandColor: gold, GemColor: common.White, Scale: 0.1}),
		WithBandPalette(gold, common.MustParseHex("#f1bc9e"), common.White),
		WithShadowTarget(shadow),
	)
	require.NoError(t, err)
	before := b.Snapshot()

	for _, s := range []float32{0, -1, math32.Inf(1), math32.NaN()} {
		assert.ErrorIs(t, b.SetScale(s), ErrConfigurationOutOfRange)
	}
	assert.ErrorIs(t, b.SetBandColor(rose), ErrConfigurationOutOfRange)

	assert.Equal(t, before, b.Snapshot())
	assert.Zero(t, shadow.invalidated)
}

func TestFixedScaleRejectsChange(t *testing.T) {
	b, err := NewBinding(
		WithConfiguration(RingConfiguration{BandColor: common.White, GemColor: common.White, Scale: 0.1}),
		WithFixedScale(true),
	)
	require.NoError(t, err)

	assert.ErrorIs(t, b.SetScale(0.2), ErrConfigurationOutOfRange)
	assert.NoError(t, b.SetScale(0.1))
}

func TestNewBindingRejectsInvalidInitialState(t *testing.T) {
	_, err := NewBinding(WithConfiguration(RingConfiguration{Scale: 0}))
	assert.ErrorIs(t, err, ErrConfigurationOutOfRange)

	_, err = NewBinding(WithGemPalette(rose))
	assert.ErrorIs(t, err, ErrConfigurationOutOfRange)
}

func TestSnapshotIsIndependent(t *testing.T) {
	b, err := NewBinding()
	require.NoError(t, err)
	snap := b.Snapshot()

	require.NoError(t, b.SetGemColor(rose))

	assert.Equal(t, common.White, snap.Gem.Color)
	assert.Equal(t, common.White, snap.ShadowTint)
}

func TestFromConfigViews(t *testing.T) {
	a, err := config.Default(config.ViewConfigurator)
	require.NoError(t, err)
	ba, err := FromConfig(a)
	require.NoError(t, err)
	assert.Len(t, ba.BandPalette(), 3)
	assert.ErrorIs(t, ba.SetGemColor(rose), ErrConfigurationOutOfRange)
	assert.ErrorIs(t, ba.SetScale(0.2), ErrConfigurationOutOfRange)

	bcfg, err := config.Default(config.ViewShowroom)
	require.NoError(t, err)
	bb, err := FromConfig(bcfg)
	require.NoError(t, err)
	require.NoError(t, bb.SetGemColor(rose))
	assert.Equal(t, common.Black, bb.ShadowTint())
}
