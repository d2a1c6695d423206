package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPresets(t *testing.T) {
	a, err := Default(ViewConfigurator)
	require.NoError(t, err)
	require.NoError(t, a.Validate())
	assert.Equal(t, StudioEnvironmentURL, a.Environment.URL)
	assert.Equal(t, float32(2), a.Environment.Blur)
	assert.Equal(t, float32(0.25), a.Post.Bloom.Intensity)
	assert.False(t, a.Post.ToneMapping.Enabled)
	assert.True(t, a.Ring.CoupleShadowTint)
	assert.Equal(t, []string{"#f3c865", "#f1bc9e", "#ffffff"}, a.Ring.BandPalette)

	b, err := Default(ViewShowroom)
	require.NoError(t, err)
	require.NoError(t, b.Validate())
	assert.Equal(t, PowerplantEnvironmentURL, b.Environment.URL)
	assert.Equal(t, float32(0.85), b.Post.Bloom.Intensity)
	assert.True(t, b.Post.ToneMapping.Enabled)
	assert.False(t, b.Ring.CoupleShadowTint)
	assert.Equal(t, "#000000", b.Ring.ShadowTint)
}

func TestDefaultReturnsDeepCopy(t *testing.T) {
	a, err := Default(ViewConfigurator)
	require.NoError(t, err)
	a.Ring.BandPalette[0] = "#000000"

	again, err := Default(ViewConfigurator)
	require.NoError(t, err)
	assert.Equal(t, "#f3c865", again.Ring.BandPalette[0])
}

func TestDefaultUnknownView(t *testing.T) {
	_, err := Default(View("gallery"))
	assert.ErrorIs(t, err, errInvalidConfig)
}

func TestDecodeTOMLLayersOntoPreset(t *testing.T) {
	doc := `
view = "showroom"
width = 640

[ring]
gem_color = "#f67d7d"

[post.bloom]
intensity = 0.5
`
	cfg, err := Decode(strings.NewReader(doc), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, ViewShowroom, cfg.View)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 720, cfg.Height)
	assert.Equal(t, "#f67d7d", cfg.Ring.GemColor)
	assert.Equal(t, "#C6A645", cfg.Ring.BandColor)
	assert.Equal(t, float32(0.5), cfg.Post.Bloom.Intensity)
	assert.Equal(t, 9, cfg.Post.Bloom.Levels)
}

func TestDecodeYAML(t *testing.T) {
	doc := "view: configurator\nring:\n  band_color: \"#f1bc9e\"\n"
	cfg, err := Decode(strings.NewReader(doc), FormatYAML)
	require.NoError(t, err)

	band, gem, shadow, err := cfg.RingColors()
	require.NoError(t, err)
	assert.Equal(t, common.MustParseHex("#f1bc9e"), band)
	assert.Equal(t, common.White, gem)
	assert.Equal(t, common.White, shadow)
}

func TestDecodeRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"scale":      "[ring]\nscale = 0.0\n",
		"color":      "[ring]\nband_color = \"#zzzzzz\"\n",
		"palette":    "[ring]\nband_palette = [\"#fff\", \"nope\"]\n",
		"frames":     "[shadow]\nframes = 0\n",
		"tonemapper": "[post.tone_mapping]\nmode = \"filmic\"\n",
		"size":       "width = -1\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc), FormatTOML)
			assert.ErrorIs(t, err, errInvalidConfig)
		})
	}
}

func TestValidateClampsDPR(t *testing.T) {
	cfg, err := Default(ViewConfigurator)
	require.NoError(t, err)
	cfg.DPR = 3
	require.NoError(t, cfg.Validate())
	assert.Equal(t, float32(1.5), cfg.DPR)

	w, h := cfg.RenderSize()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
}

func TestLoadPicksDecoderByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ring.yml")
	require.NoError(t, os.WriteFile(path, []byte("view: showroom\nwidth: 800\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ViewShowroom, cfg.View)
	assert.Equal(t, 800, cfg.Width)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestSampleConfigsLoad(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "configurator.toml"))
	require.NoError(t, err)
	assert.Equal(t, ViewConfigurator, cfg.View)
	assert.True(t, cfg.Ring.FixedScale)
	assert.Len(t, cfg.Ring.BandPalette, 3)
	assert.Equal(t, "configurator.png", cfg.Output.Path)

	cfg, err = Load(filepath.Join("..", "..", "configs", "showroom.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ViewShowroom, cfg.View)
	assert.Equal(t, float32(1.5), cfg.DPR)
	assert.Equal(t, "aces", cfg.Post.ToneMapping.Mode)
	assert.Equal(t, []string{"Gold", "Rose", "White"}, cfg.Ring.BandPaletteNames)
}
