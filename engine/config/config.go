package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var errInvalidConfig = errors.New("invalid configuration")

// Format identifies the encoding of a configuration document.
type Format int

const (
	// FormatTOML is the default configuration encoding.
	FormatTOML Format = iota

	// FormatYAML is accepted for files ending in .yaml or .yml.
	FormatYAML
)

// Config is the startup configuration for a ring view. Every field has a preset default; a
// configuration document only needs to name the view and the values it overrides.
type Config struct {
	View        View              `toml:"view" yaml:"view"`
	Width       int               `toml:"width" yaml:"width"`
	Height      int               `toml:"height" yaml:"height"`
	DPR         float32           `toml:"dpr" yaml:"dpr"`
	Workers     int               `toml:"workers" yaml:"workers"`
	Window      WindowConfig      `toml:"window" yaml:"window"`
	Camera      CameraConfig      `toml:"camera" yaml:"camera"`
	Light       SpotConfig        `toml:"light" yaml:"light"`
	Environment EnvironmentConfig `toml:"environment" yaml:"environment"`
	Model       ModelConfig       `toml:"model" yaml:"model"`
	Layout      LayoutConfig      `toml:"layout" yaml:"layout"`
	Ring        RingConfig        `toml:"ring" yaml:"ring"`
	Shadow      ShadowConfig      `toml:"shadow" yaml:"shadow"`
	Post        PostConfig        `toml:"post" yaml:"post"`
	Output      OutputConfig      `toml:"output" yaml:"output"`
}

type WindowConfig struct {
	Title string `toml:"title" yaml:"title"`
	VSync bool   `toml:"vsync" yaml:"vsync"`
}

// CameraConfig places the perspective camera. Fov is vertical, in degrees.
type CameraConfig struct {
	Position [3]float32 `toml:"position" yaml:"position"`
	Target   [3]float32 `toml:"target" yaml:"target"`
	Fov      float32    `toml:"fov" yaml:"fov"`
	Near     float32    `toml:"near" yaml:"near"`
	Far      float32    `toml:"far" yaml:"far"`
}

// SpotConfig is the key spot light. Angle is the cone half-angle in radians.
type SpotConfig struct {
	Position  [3]float32 `toml:"position" yaml:"position"`
	Angle     float32    `toml:"angle" yaml:"angle"`
	Penumbra  float32    `toml:"penumbra" yaml:"penumbra"`
	Intensity float32    `toml:"intensity" yaml:"intensity"`
}

// EnvironmentConfig selects the radiance map. Blur is the background blur in mip levels.
type EnvironmentConfig struct {
	URL       string  `toml:"url" yaml:"url"`
	Blur      float32 `toml:"blur" yaml:"blur"`
	Intensity float32 `toml:"intensity" yaml:"intensity"`
	MaxWidth  int     `toml:"max_width" yaml:"max_width"`
}

// ModelConfig selects the ring geometry. An empty Path uses the procedural reference ring.
type ModelConfig struct {
	Path  string        `toml:"path" yaml:"path"`
	Names NameMapConfig `toml:"names" yaml:"names"`
}

// NameMapConfig maps file node, mesh or material names onto the ring's parts.
type NameMapConfig struct {
	Band         string `toml:"band" yaml:"band"`
	SolidMetal   string `toml:"solid_metal" yaml:"solid_metal"`
	Gem          string `toml:"gem" yaml:"gem"`
	DefaultMetal string `toml:"default_metal" yaml:"default_metal"`
}

// LayoutConfig is the transform stack the ring is placed under.
type LayoutConfig struct {
	GroupPosition  [3]float32 `toml:"group_position" yaml:"group_position"`
	CenterPosition [3]float32 `toml:"center_position" yaml:"center_position"`
	CenterRotation [3]float32 `toml:"center_rotation" yaml:"center_rotation"`
}

// RingConfig holds the initial user-facing ring parameters and their constraints.
type RingConfig struct {
	BandColor        string   `toml:"band_color" yaml:"band_color"`
	GemColor         string   `toml:"gem_color" yaml:"gem_color"`
	ShadowTint       string   `toml:"shadow_tint" yaml:"shadow_tint"`
	Scale            float32  `toml:"scale" yaml:"scale"`
	CoupleShadowTint bool     `toml:"couple_shadow_tint" yaml:"couple_shadow_tint"`
	BandPalette      []string `toml:"band_palette" yaml:"band_palette"`
	BandPaletteNames []string `toml:"band_palette_names" yaml:"band_palette_names"`
	GemPalette       []string `toml:"gem_palette" yaml:"gem_palette"`
	FixedScale       bool     `toml:"fixed_scale" yaml:"fixed_scale"`
}

// ShadowConfig configures the accumulated contact shadow.
type ShadowConfig struct {
	Frames     int                   `toml:"frames" yaml:"frames"`
	Opacity    float32               `toml:"opacity" yaml:"opacity"`
	AlphaTest  float32               `toml:"alpha_test" yaml:"alpha_test"`
	ColorBlend float32               `toml:"color_blend" yaml:"color_blend"`
	Scale      float32               `toml:"scale" yaml:"scale"`
	Resolution int                   `toml:"resolution" yaml:"resolution"`
	Seed       uint64                `toml:"seed" yaml:"seed"`
	Light      RandomizedLightConfig `toml:"light" yaml:"light"`
}

type RandomizedLightConfig struct {
	Position [3]float32 `toml:"position" yaml:"position"`
	Radius   float32    `toml:"radius" yaml:"radius"`
	Amount   int        `toml:"amount" yaml:"amount"`
	Ambient  float32    `toml:"ambient" yaml:"ambient"`
	Bias     float32    `toml:"bias" yaml:"bias"`
	MapSize  int        `toml:"map_size" yaml:"map_size"`
}

type PostConfig struct {
	AO          AOConfig          `toml:"ao" yaml:"ao"`
	Bloom       BloomConfig       `toml:"bloom" yaml:"bloom"`
	ToneMapping ToneMappingConfig `toml:"tone_mapping" yaml:"tone_mapping"`
}

type AOConfig struct {
	Enabled   bool    `toml:"enabled" yaml:"enabled"`
	Radius    float32 `toml:"radius" yaml:"radius"`
	Intensity float32 `toml:"intensity" yaml:"intensity"`
	Falloff   float32 `toml:"falloff" yaml:"falloff"`
}

type BloomConfig struct {
	Enabled    bool    `toml:"enabled" yaml:"enabled"`
	Threshold  float32 `toml:"threshold" yaml:"threshold"`
	Smoothing  float32 `toml:"smoothing" yaml:"smoothing"`
	Intensity  float32 `toml:"intensity" yaml:"intensity"`
	Levels     int     `toml:"levels" yaml:"levels"`
	MipmapBlur bool    `toml:"mipmap_blur" yaml:"mipmap_blur"`
}

type ToneMappingConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Mode    string `toml:"mode" yaml:"mode"`
}

// OutputConfig is used by the headless renderer.
type OutputConfig struct {
	Path     string `toml:"path" yaml:"path"`
	MaxTicks int    `toml:"max_ticks" yaml:"max_ticks"`
}

// Load reads a configuration file, choosing the decoder from the file extension.
//
// Parameters:
//   - path: the configuration file path
//
// Returns:
//   - *Config: the validated configuration
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	format := FormatTOML
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}
	cfg, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads a configuration document. The document's view selects the preset that the
// remaining keys are layered onto; a document without a view uses the configurator preset.
//
// Parameters:
//   - r: the document reader
//   - format: the document encoding
//
// Returns:
//   - *Config: the validated configuration
//   - error: error if decoding or validation fails
func Decode(r io.Reader, format Format) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	unmarshal := toml.Unmarshal
	if format == FormatYAML {
		unmarshal = yaml.Unmarshal
	}

	var head struct {
		View View `toml:"view" yaml:"view"`
	}
	if err := unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg, err := Default(common.Coalesce(head.View, ViewConfigurator))
	if err != nil {
		return nil, err
	}
	if err := unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and clamps soft limits in place.
//
// Returns:
//   - error: error describing the first invalid field
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", errInvalidConfig, c.Width, c.Height)
	}
	c.DPR = common.Clamp(c.DPR, 1, 1.5)
	if !(c.Ring.Scale > 0) {
		return fmt.Errorf("%w: ring scale %v must be > 0", errInvalidConfig, c.Ring.Scale)
	}
	if _, _, _, err := c.RingColors(); err != nil {
		return err
	}
	if _, err := c.BandPalette(); err != nil {
		return err
	}
	if _, err := c.GemPalette(); err != nil {
		return err
	}
	if c.Shadow.Frames <= 0 {
		return fmt.Errorf("%w: shadow frames %d must be > 0", errInvalidConfig, c.Shadow.Frames)
	}
	if c.Shadow.Resolution <= 0 || c.Shadow.Light.MapSize <= 0 || c.Shadow.Light.Amount <= 0 {
		return fmt.Errorf("%w: shadow resolution, map size and light amount must be > 0", errInvalidConfig)
	}
	if c.Post.Bloom.Levels < 1 {
		return fmt.Errorf("%w: bloom levels %d must be >= 1", errInvalidConfig, c.Post.Bloom.Levels)
	}
	switch c.Post.ToneMapping.Mode {
	case "", "aces", "reinhard":
	default:
		return fmt.Errorf("%w: unknown tone mapping mode %q", errInvalidConfig, c.Post.ToneMapping.Mode)
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		return fmt.Errorf("%w: camera fov %v", errInvalidConfig, c.Camera.Fov)
	}
	return nil
}

// RenderSize returns the frame size after applying the device pixel ratio.
func (c *Config) RenderSize() (int, int) {
	return int(float32(c.Width)*c.DPR + 0.5), int(float32(c.Height)*c.DPR + 0.5)
}

// RingColors parses the initial ring colors.
//
// Returns:
//   - band, gem, shadow: the parsed linear colors
//   - error: error naming the malformed color
func (c *Config) RingColors() (band, gem, shadow common.Color, err error) {
	if band, err = common.ParseHex(c.Ring.BandColor); err != nil {
		return band, gem, shadow, fmt.Errorf("%w: band color: %v", errInvalidConfig, err)
	}
	if gem, err = common.ParseHex(c.Ring.GemColor); err != nil {
		return band, gem, shadow, fmt.Errorf("%w: gem color: %v", errInvalidConfig, err)
	}
	tint := common.Coalesce(c.Ring.ShadowTint, c.Ring.GemColor)
	if shadow, err = common.ParseHex(tint); err != nil {
		return band, gem, shadow, fmt.Errorf("%w: shadow tint: %v", errInvalidConfig, err)
	}
	return band, gem, shadow, nil
}

// BandPalette parses the band palette. An empty palette leaves the band color unconstrained.
func (c *Config) BandPalette() ([]common.Color, error) {
	return parsePalette("band", c.Ring.BandPalette)
}

// GemPalette parses the gem palette. An empty palette leaves the gem color unconstrained.
func (c *Config) GemPalette() ([]common.Color, error) {
	return parsePalette("gem", c.Ring.GemPalette)
}

func parsePalette(name string, hexes []string) ([]common.Color, error) {
	if len(hexes) == 0 {
		return nil, nil
	}
	out := make([]common.Color, len(hexes))
	for i, h := range hexes {
		c, err := common.ParseHex(h)
		if err != nil {
			return nil, fmt.Errorf("%w: %s palette entry %d: %v", errInvalidConfig, name, i, err)
		}
		out[i] = c
	}
	return out, nil
}
