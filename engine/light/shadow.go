package light

// Accumulated shadow defaults.
const (
	// DefaultFrames is the number of accumulation steps before the shadow converges.
	DefaultFrames = 100

	// DefaultOpacity scales the composited shadow alpha. Values above 1 deepen the core.
	DefaultOpacity float32 = 1.05

	// DefaultAlphaTest is the lit visibility at and above which the shadow is fully transparent,
	// before the factor of three from summing the channels.
	DefaultAlphaTest float32 = 0.75

	// DefaultColorBlend multiplies the tint in the composited shadow color.
	DefaultColorBlend float32 = 2

	// DefaultPlaneScale is the side length of the square ground plane that catches the shadow.
	DefaultPlaneScale float32 = 10

	// DefaultResolution is the width and height of the accumulation buffer in texels.
	DefaultResolution = 128
)

// Randomized light defaults.
const (
	DefaultLightAmount = 8

	DefaultLightRadius float32 = 5

	// DefaultLightAmbient is the probability a sample is taken from the sky hemisphere instead of near
	// the key position.
	DefaultLightAmbient float32 = 0.5

	// DefaultShadowMapSize is the width and height of each sample's depth map.
	DefaultShadowMapSize = 512

	// DefaultShadowBias is the constant depth bias, in normalized depth, applied to comparisons.
	DefaultShadowBias float32 = 0.001

	// DefaultShadowHalfExtent is the half-size of each sample's orthographic frustum in world units.
	DefaultShadowHalfExtent float32 = 5

	DefaultShadowNear float32 = 0.5
	DefaultShadowFar  float32 = 50
)
