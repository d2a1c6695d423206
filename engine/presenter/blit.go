package presenter

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var errUnsupportedBinding = errors.New("unsupported shader binding")

// blitShader draws one triangle covering the viewport and samples the uploaded frame.
const blitShader = `
@group(0) @binding(0) var frameTexture: texture_2d<f32>;
@group(0) @binding(1) var frameSampler: sampler;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

// Vertices 0, 1, 2 map to uv (0,0), (2,0), (0,2); the clip-space triangle covers the screen.
@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOutput {
    var out: VertexOutput;
    let uv = vec2<f32>(f32((index << 1u) & 2u), f32(index & 2u));
    out.position = vec4<f32>(uv.x * 2.0 - 1.0, 1.0 - uv.y * 2.0, 0.0, 1.0);
    out.uv = uv;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(frameTexture, frameSampler, in.uv);
}
`

var (
	// bindingRegex captures group, binding, variable name and type from handle declarations such as
	// @group(0) @binding(1) var frameSampler: sampler;
	bindingRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<[^>]*>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)

	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)
	lineCommentRegex   = regexp.MustCompile(`//[^\n]*`)
)

// shaderInfo is what the presenter needs to know about a WGSL module to build its pipeline.
type shaderInfo struct {
	vertexEntry   string
	fragmentEntry string
	groups        map[int]wgpu.BindGroupLayoutDescriptor
}

// reflectShader reads the entry points and the texture and sampler bindings of a WGSL source.
// Every binding is visible to the fragment stage. Buffer bindings are rejected.
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - shaderInfo: the entry points and layouts by group index
//   - error: error if an entry point is missing or a binding type is unsupported
func reflectShader(source string) (shaderInfo, error) {
	cleaned := lineCommentRegex.ReplaceAllString(source, "")
	info := shaderInfo{groups: make(map[int]wgpu.BindGroupLayoutDescriptor)}

	if m := vertexEntryRegex.FindStringSubmatch(cleaned); m != nil {
		info.vertexEntry = m[1]
	}
	if m := fragmentEntryRegex.FindStringSubmatch(cleaned); m != nil {
		info.fragmentEntry = m[1]
	}
	if info.vertexEntry == "" || info.fragmentEntry == "" {
		return shaderInfo{}, errors.New("shader needs a @vertex and a @fragment entry point")
	}

	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	for _, m := range bindingRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		entry, err := classifyBinding(uint32(binding), strings.TrimSpace(m[4]))
		if err != nil {
			return shaderInfo{}, fmt.Errorf("%s: %w", m[3], err)
		}
		entries[group] = append(entries[group], entry)
	}
	for g, list := range entries {
		sort.Slice(list, func(i, j int) bool { return list[i].Binding < list[j].Binding })
		info.groups[g] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return info, nil
}

func classifyBinding(binding uint32, typeName string) (wgpu.BindGroupLayoutEntry, error) {
	entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: wgpu.ShaderStageFragment}
	switch {
	case typeName == "sampler":
		entry.Sampler = wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}
	case typeName == "texture_2d<f32>":
		entry.Texture = wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeFloat,
			ViewDimension: wgpu.TextureViewDimension2D,
		}
	default:
		return entry, fmt.Errorf("%w: %s", errUnsupportedBinding, typeName)
	}
	return entry, nil
}

// frameFormat picks the texture format for sRGB-encoded frame bytes. On an sRGB surface the
// texture decodes on sampling and the surface re-encodes; otherwise the bytes pass through.
func frameFormat(surface wgpu.TextureFormat) wgpu.TextureFormat {
	switch surface {
	case wgpu.TextureFormatBGRA8UnormSrgb, wgpu.TextureFormatRGBA8UnormSrgb:
		return wgpu.TextureFormatRGBA8UnormSrgb
	}
	return wgpu.TextureFormatRGBA8Unorm
}
