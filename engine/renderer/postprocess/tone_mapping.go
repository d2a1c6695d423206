package postprocess

import (
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/raster"
)

type toneMapping struct {
	mapper renderer.ToneMapper
}

var _ Effect = &toneMapping{}

// NewToneMapping creates the tone mapping effect.
//
// Parameters:
//   - mode: "aces", "reinhard" or "" for ACES
//
// Returns:
//   - Effect: the effect
//   - error: error if the mode is unknown
func NewToneMapping(mode string) (Effect, error) {
	m, err := renderer.ToneMapperByName(mode)
	if err != nil {
		return nil, err
	}
	return &toneMapping{mapper: m}, nil
}

func (t *toneMapping) Kind() Kind {
	return KindToneMapping
}

func (t *toneMapping) Apply(f *renderer.Frame, rows raster.Rasterizer) {
	rows.Rows(f.Height, func(y0, y1 int) {
		for i := y0 * f.Width; i < y1*f.Width; i++ {
			f.Color[i] = t.mapper(f.Color[i])
		}
	})
}
