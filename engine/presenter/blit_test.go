package presenter

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReflectBlitShader(t *testing.T) {
	info, err := reflectShader(blitShader)
	require.NoError(t, err)
	assert.Equal(t, "vs_main", info.vertexEntry)
	assert.Equal(t, "fs_main", info.fragmentEntry)

	require.Len(t, info.groups, 1)
	entries := info.groups[0].Entries
	require.Len(t, entries, 2)

	assert.Equal(t, uint32(0), entries[0].Binding)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, entries[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.ShaderStageFragment, entries[0].Visibility)

	assert.Equal(t, uint32(1), entries[1].Binding)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, entries[1].Sampler.Type)
}

func TestReflectSortsBindings(t *testing.T) {
	src := `
@group(0) @binding(3) var s: sampler;
@group(0) @binding(1) var t: texture_2d<f32>;
@vertex fn v() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }
@fragment fn f() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`
	info, err := reflectShader(src)
	require.NoError(t, err)
	entries := info.groups[0].Entries
	require.Len(t, entries, 2)
	assert.Equal(t, uint32(1), entries[0].Binding)
	assert.Equal(t, uint32(3), entries[1].Binding)
}

func TestReflectRejects(t *testing.T) {
	_, err := reflectShader(`@fragment fn f() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }`)
	assert.Error(t, err)

	_, err = reflectShader(`
@group(0) @binding(0) var<uniform> camera: mat4x4<f32>;
@vertex fn v() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }
@fragment fn f() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`)
	assert.ErrorIs(t, err, errUnsupportedBinding)

	// Commented-out declarations are ignored.
	info, err := reflectShader(`
// @group(0) @binding(0) var<uniform> camera: mat4x4<f32>;
@vertex fn v() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }
@fragment fn f() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`)
	require.NoError(t, err)
	assert.Empty(t, info.groups)
}

func TestFrameFormatFollowsSurfaceEncoding(t *testing.T) {
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, frameFormat(wgpu.TextureFormatBGRA8UnormSrgb))
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, frameFormat(wgpu.TextureFormatRGBA8UnormSrgb))
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, frameFormat(wgpu.TextureFormatBGRA8Unorm))
}
