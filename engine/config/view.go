package config

import (
	"fmt"

	"github.com/jinzhu/copier"
)

// View names one of the two ring presentations.
type View string

const (
	// ViewConfigurator is the palette-driven configurator: three band colors, a fixed white gem,
	// fixed scale and a shadow tinted by the gem color.
	ViewConfigurator View = "configurator"

	// ViewShowroom is the showroom presentation: named frame finishes, free gem and shadow colors,
	// stronger bloom and a tone mapping pass.
	ViewShowroom View = "showroom"
)

// Environment map sources used by the two views.
const (
	StudioEnvironmentURL     = "https://dl.polyhaven.org/file/ph-assets/HDRIs/hdr/4k/studio_small_09_4k.hdr"
	PowerplantEnvironmentURL = "https://dl.polyhaven.org/file/ph-assets/HDRIs/hdr/4k/peppermint_powerplant_2_4k.hdr"
)

var presets = map[View]Config{
	ViewConfigurator: configuratorPreset(),
	ViewShowroom:     showroomPreset(),
}

// Default returns a deep copy of the preset for view.
//
// Parameters:
//   - view: the view preset to copy
//
// Returns:
//   - *Config: the preset copy
//   - error: error if the view is unknown
func Default(view View) (*Config, error) {
	p, ok := presets[view]
	if !ok {
		return nil, fmt.Errorf("%w: unknown view %q", errInvalidConfig, view)
	}
	cfg := &Config{}
	if err := copier.CopyWithOption(cfg, &p, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("failed to copy %s preset: %w", view, err)
	}
	return cfg, nil
}

func basePreset() Config {
	return Config{
		Width:   1280,
		Height:  720,
		DPR:     1,
		Workers: 0,
		Window: WindowConfig{
			Title: "oxy-jewel",
			VSync: true,
		},
		Camera: CameraConfig{
			Position: [3]float32{-5, 5, 14},
			Target:   [3]float32{0, 0, 0},
			Fov:      20,
			Near:     0.1,
			Far:      1000,
		},
		Light: SpotConfig{
			Position:  [3]float32{10, 10, 10},
			Angle:     0.15,
			Penumbra:  1,
			Intensity: 3.14159265,
		},
		Environment: EnvironmentConfig{
			Intensity: 1,
			MaxWidth:  1024,
		},
		Model: ModelConfig{
			Names: NameMapConfig{
				Band:         "mesh_0",
				SolidMetal:   "mesh_9",
				Gem:          "mesh_4",
				DefaultMetal: "WhiteMetal",
			},
		},
		Layout: LayoutConfig{
			CenterRotation: [3]float32{-0.1, 0, 0.085},
		},
		Shadow: ShadowConfig{
			Frames:     100,
			Opacity:    1.05,
			AlphaTest:  0.75,
			ColorBlend: 2,
			Scale:      10,
			Resolution: 128,
			Light: RandomizedLightConfig{
				Position: [3]float32{10, 5, -5},
				Radius:   5,
				Amount:   8,
				Ambient:  0.5,
				Bias:     0.001,
				MapSize:  512,
			},
		},
		Post: PostConfig{
			AO: AOConfig{
				Enabled:   true,
				Radius:    0.15,
				Intensity: 4,
				Falloff:   2,
			},
			Bloom: BloomConfig{
				Enabled:    true,
				Threshold:  3.5,
				Smoothing:  0.025,
				Levels:     9,
				MipmapBlur: true,
			},
		},
		Output: OutputConfig{
			Path:     "ring.png",
			MaxTicks: 120,
		},
	}
}

func configuratorPreset() Config {
	c := basePreset()
	c.View = ViewConfigurator
	c.Environment.URL = StudioEnvironmentURL
	c.Environment.Blur = 2
	c.Layout.GroupPosition = [3]float32{0, -0.25, 0}
	c.Layout.CenterPosition = [3]float32{0, -0.12, 0}
	c.Ring = RingConfig{
		BandColor:        "#f3c865",
		GemColor:         "#ffffff",
		ShadowTint:       "#ffffff",
		Scale:            0.1,
		CoupleShadowTint: true,
		BandPalette:      []string{"#f3c865", "#f1bc9e", "#ffffff"},
		GemPalette:       []string{"#ffffff"},
		FixedScale:       true,
	}
	c.Post.Bloom.Intensity = 0.25
	return c
}

func showroomPreset() Config {
	c := basePreset()
	c.View = ViewShowroom
	c.Environment.URL = PowerplantEnvironmentURL
	c.Environment.Blur = 1
	c.Ring = RingConfig{
		BandColor:        "#C6A645",
		GemColor:         "#ffffff",
		ShadowTint:       "#000000",
		Scale:            0.1,
		CoupleShadowTint: false,
		BandPalette:      []string{"#C6A645", "#f67d7d", "#ffffff"},
		BandPaletteNames: []string{"Gold", "Rose", "White"},
	}
	c.Post.Bloom.Intensity = 0.85
	c.Post.ToneMapping = ToneMappingConfig{Enabled: true, Mode: "aces"}
	return c
}
