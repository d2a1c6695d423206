package renderer

import (
	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/environment"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/material"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// dielectricF0 is the normal-incidence reflectance of non-metals.
const dielectricF0 = 0.04

// minGloss keeps the Blinn-Phong exponent finite for mirror-like surfaces.
const minGloss = 0.045

// dispersion is the per-channel index offset sign for red, green and blue.
var dispersion = [3]float32{-1, 0, 1}

func (r *rendererImpl) sampleEnv(env *environment.Map, dir mgl32.Vec3, lod float32) common.Color {
	if env == nil {
		return r.placeholder
	}
	return env.Sample(dir, lod)
}

func (r *rendererImpl) shadeMetal(p, n mgl32.Vec3, desc material.Descriptor, env *environment.Map) common.Color {
	v := common.SafeNormalize(r.eye.Sub(p))
	nv := max(n.Dot(v), 1e-4)
	base := desc.Color
	m := common.Clamp01(desc.Metalness)
	rough := common.Clamp01(desc.Roughness)
	f0 := common.Color{dielectricF0, dielectricF0, dielectricF0}.Lerp(base, m)
	envScale := r.envIntensity * desc.EnvMapIntensity

	var lod, maxLOD float32
	if env != nil {
		lod, maxLOD = env.RoughnessLOD(rough), env.MaxLOD()
	}
	refl := common.Reflect(v.Mul(-1), n)
	prefiltered := r.sampleEnv(env, refl, lod).Scale(envScale)
	irradiance := r.sampleEnv(env, n, maxLOD).Scale(envScale)

	var fr common.Color
	for i := range fr {
		fr[i] = f0[i] + (max(1-rough, f0[i])-f0[i])*math32.Pow(1-nv, 5)
	}
	spec := prefiltered.Mul(fr)
	diff := irradiance.Mul(base).Scale(1 - m)

	if r.light != nil {
		l, radiance := r.light.Illuminate(p)
		if nl := n.Dot(l); nl > 0 && radiance != (common.Color{}) {
			h := common.SafeNormalize(l.Add(v))
			lobe := blinnPhong(max(n.Dot(h), 0), max(rough, minGloss)) * nl
			vh := max(v.Dot(h), 0)
			var fs common.Color
			for i := range fs {
				fs[i] = common.Schlick(f0[i], vh)
			}
			spec = spec.Add(radiance.Mul(fs).Scale(lobe))
			diff = diff.Add(radiance.Mul(base).Scale((1 - m) * nl / math32.Pi))
		}
	}

	c := diff.Add(spec)
	if desc.ToneMapped && r.toneMapper != nil {
		c = r.toneMapper(c)
	}
	return c
}

func (r *rendererImpl) shadeRefraction(p, n mgl32.Vec3, desc material.Descriptor, env *environment.Map) common.Color {
	v := common.SafeNormalize(r.eye.Sub(p))
	in := v.Mul(-1)
	nv := common.Clamp01(n.Dot(v))
	ior := max(desc.RefractionStrength, 1)

	var lod float32
	if env != nil {
		lod = env.RoughnessLOD(desc.Roughness)
	}

	var refracted common.Color
	for c, k := range dispersion {
		eta := 1 / (ior * (1 + k*desc.AberrationStrength))
		t, ok := common.Refract(in, n, eta)
		if !ok {
			t = common.Reflect(in, n)
		}
		refracted[c] = r.sampleEnv(env, t, lod)[c]
	}

	f0 := (ior - 1) / (ior + 1)
	fr := common.Schlick(f0*f0, nv)
	reflected := r.sampleEnv(env, common.Reflect(in, n), lod)
	c := refracted.Scale(1 - fr).Add(reflected.Scale(fr)).Mul(desc.Color).Scale(r.envIntensity * desc.EnvMapIntensity)

	if r.light != nil {
		l, radiance := r.light.Illuminate(p)
		if nl := n.Dot(l); nl > 0 && radiance != (common.Color{}) {
			h := common.SafeNormalize(l.Add(v))
			c = c.Add(radiance.Scale(blinnPhong(max(n.Dot(h), 0), minGloss) * nl * fr))
		}
	}

	if desc.ToneMapped && r.toneMapper != nil {
		c = r.toneMapper(c)
	}
	return c
}

// blinnPhong is the energy-normalized Blinn-Phong lobe for a perceptual roughness.
func blinnPhong(nh, roughness float32) float32 {
	alpha := roughness * roughness
	shininess := 2/(alpha*alpha) - 2
	return (shininess + 2) / (8 * math32.Pi) * math32.Pow(nh, shininess)
}
