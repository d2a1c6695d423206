package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Clamp01 clamps v into [0, 1]. NaN maps to 0.
func Clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp clamps v into [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SmoothStep is the Hermite interpolation between edge0 and edge1.
func SmoothStep(edge0, edge1, x float32) float32 {
	if edge1 == edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// EulerXYZ builds a rotation matrix from intrinsic X, then Y, then Z rotations in radians.
// This matches the default Euler order used by the authoring tools the ring assets come from.
//
// Parameters:
//   - x, y, z: rotation angles in radians
//
// Returns:
//   - mgl32.Mat4: the rotation matrix
func EulerXYZ(x, y, z float32) mgl32.Mat4 {
	return mgl32.HomogRotate3DX(x).Mul4(mgl32.HomogRotate3DY(y)).Mul4(mgl32.HomogRotate3DZ(z))
}

// Compose builds a TRS matrix: translation * rotation * scale.
//
// Parameters:
//   - t: translation
//   - r: rotation matrix (only the upper 3x3 is used)
//   - s: per-axis scale
//
// Returns:
//   - mgl32.Mat4: the composed transform
func Compose(t mgl32.Vec3, r mgl32.Mat4, s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(t[0], t[1], t[2]).Mul4(r).Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

// TransformPoint applies m to the point p, including the perspective divide.
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	v := m.Mul4x1(p.Vec4(1))
	if v[3] != 0 && v[3] != 1 {
		return mgl32.Vec3{v[0] / v[3], v[1] / v[3], v[2] / v[3]}
	}
	return v.Vec3()
}

// TransformDirection applies the linear part of m to d, ignoring translation.
func TransformDirection(m mgl32.Mat4, d mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(d.Vec4(0)).Vec3()
}

// TransformNormal transforms a surface normal by the inverse transpose of m and renormalizes it.
func TransformNormal(normalMatrix mgl32.Mat3, n mgl32.Vec3) mgl32.Vec3 {
	return SafeNormalize(normalMatrix.Mul3x1(n))
}

// NormalMatrix returns the inverse transpose of the upper 3x3 of m.
func NormalMatrix(m mgl32.Mat4) mgl32.Mat3 {
	return m.Mat3().Inv().Transpose()
}

// SafeNormalize normalizes v, returning the zero vector for degenerate input instead of NaNs.
func SafeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < 1e-20 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

// Reflect reflects the incident direction i about the normal n.
func Reflect(i, n mgl32.Vec3) mgl32.Vec3 {
	return i.Sub(n.Mul(2 * n.Dot(i)))
}

// Refract bends the incident direction i through a surface with normal n and the relative
// index of refraction eta (n1 / n2). ok is false on total internal reflection.
func Refract(i, n mgl32.Vec3, eta float32) (t mgl32.Vec3, ok bool) {
	cosi := -n.Dot(i)
	k := 1 - eta*eta*(1-cosi*cosi)
	if k < 0 {
		return mgl32.Vec3{}, false
	}
	return i.Mul(eta).Add(n.Mul(eta*cosi - math32.Sqrt(k))), true
}

// Schlick returns the Schlick Fresnel approximation for reflectance f0 at the given cosine.
func Schlick(f0, cosTheta float32) float32 {
	m := Clamp01(1 - cosTheta)
	m2 := m * m
	return f0 + (1-f0)*m2*m2*m
}

// DirectionToEquirect maps a unit direction to equirectangular texture coordinates in [0, 1).
// +Y is up and u = 0.5 faces -Z.
func DirectionToEquirect(d mgl32.Vec3) (u, v float32) {
	u = 0.5 + math32.Atan2(d[0], -d[2])/(2*math32.Pi)
	v = math32.Acos(Clamp(d[1], -1, 1)) / math32.Pi
	return u, v
}

// EquirectToDirection is the inverse of DirectionToEquirect.
func EquirectToDirection(u, v float32) mgl32.Vec3 {
	phi := (u - 0.5) * 2 * math32.Pi
	theta := v * math32.Pi
	st := math32.Sin(theta)
	return mgl32.Vec3{st * math32.Sin(phi), math32.Cos(theta), -st * math32.Cos(phi)}
}
