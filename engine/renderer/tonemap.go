package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-jewel/common"
)

// ToneMapper compresses linear HDR radiance into displayable [0, 1] linear color.
type ToneMapper func(c common.Color) common.Color

// ACESFilmic is the Narkowicz fit of the ACES filmic curve, applied per channel.
func ACESFilmic(c common.Color) common.Color {
	var out common.Color
	for i, v := range c {
		v = max(v, 0) * 0.6
		out[i] = common.Clamp01((v * (2.51*v + 0.03)) / (v*(2.43*v+0.59) + 0.14))
	}
	return out
}

// Reinhard is the simple x/(1+x) operator, applied per channel.
func Reinhard(c common.Color) common.Color {
	var out common.Color
	for i, v := range c {
		v = max(v, 0)
		out[i] = v / (1 + v)
	}
	return out
}

// ToneMapperByName resolves a configured tone mapping mode.
//
// Parameters:
//   - mode: "aces", "reinhard" or "" for ACES
//
// Returns:
//   - ToneMapper: the operator
//   - error: error if the mode is unknown
func ToneMapperByName(mode string) (ToneMapper, error) {
	switch mode {
	case "", "aces":
		return ACESFilmic, nil
	case "reinhard":
		return Reinhard, nil
	}
	return nil, fmt.Errorf("unknown tone mapping mode %q", mode)
}
