package mathx

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NormalizeYaw maps yaw to its representative modulo pi that lies closest
// to ref. A rectangle is symmetric under 180-degree rotation, so two yaw
// values half a turn apart describe the same visible orientation; callers
// always want the one nearest the reference (typically the camera yaw).
func NormalizeYaw(yaw, ref float64) float64 {
	for yaw-ref > math.Pi/2 {
		yaw -= math.Pi
	}
	for ref-yaw > math.Pi/2 {
		yaw += math.Pi
	}
	return yaw
}

// YawFromTransform extracts the rotation about the world up axis from the
// rotation part of an affine transform. For a pure yaw rotation the local
// X axis lands at (cos yaw, 0, -sin yaw) in world space.
func YawFromTransform(m mgl64.Mat4) float64 {
	return math.Atan2(-m.At(2, 0), m.At(0, 0))
}

// YawRight returns the world-space direction of the local X axis of a body
// rotated by yaw about the up axis.
func YawRight(yaw float64) mgl64.Vec3 {
	return mgl64.Vec3{math.Cos(yaw), 0, -math.Sin(yaw)}
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MeanVec3 returns the arithmetic mean of vs. vs must not be empty.
func MeanVec3(vs []mgl64.Vec3) mgl64.Vec3 {
	var sum mgl64.Vec3
	for _, v := range vs {
		sum = sum.Add(v)
	}
	return sum.Mul(1 / float64(len(vs)))
}
