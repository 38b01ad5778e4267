package tracking

import (
	"github.com/go-gl/mathgl/mgl64"
)

// State reports the quality of the tracking collaborator's pose estimate.
type State uint8

const (
	StateNormal State = iota
	StateNotAvailable
	StateLimited
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateNotAvailable:
		return "not_available"
	case StateLimited:
		return "limited"
	default:
		return "unknown"
	}
}

// LimitedReason qualifies StateLimited.
type LimitedReason uint8

const (
	LimitedNone LimitedReason = iota
	LimitedInitializing
	LimitedExcessiveMotion
	LimitedInsufficientFeatures
)

// Plane describes a detected, roughly planar real-world surface. Transform
// carries the plane's pose (rotation + translation); Center and Extent are
// expressed in the plane's local frame. Extent holds the full width along
// local X and the full depth along local Z.
type Plane struct {
	Transform mgl64.Mat4
	Center    mgl64.Vec3
	Extent    mgl64.Vec2
}

// XAxis returns the world-space direction of the plane's local X axis.
func (p Plane) XAxis() mgl64.Vec3 {
	return mgl64.Vec3{p.Transform.At(0, 0), p.Transform.At(1, 0), p.Transform.At(2, 0)}
}

// ToLocal maps a world-space point into the plane's local frame.
func (p Plane) ToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(world, p.Transform.Inv())
}

// ToWorld maps a plane-local point back to world space.
func (p Plane) ToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(local, p.Transform)
}

// HitResult is one hit-test intersection against detected geometry.
type HitResult struct {
	WorldTransform mgl64.Mat4
	Distance       float64
	Plane          *Plane
}

// WorldPosition returns the translation component of the hit transform.
func (h HitResult) WorldPosition() mgl64.Vec3 {
	return mgl64.Vec3{h.WorldTransform.At(0, 3), h.WorldTransform.At(1, 3), h.WorldTransform.At(2, 3)}
}

// Sample is the per-frame observation the stabilizer consumes: a hit-test
// world position, the plane it landed on when one is known, and the camera
// yaw for orientation fallback.
type Sample struct {
	WorldPosition mgl64.Vec3
	Plane         *Plane
	CameraYaw     float64
}

// Frame bundles everything the tracking collaborator delivers per rendered
// frame. Hit is nil when the frame's hit test found no surface.
type Frame struct {
	CameraYaw     float64
	State         State
	LimitedReason LimitedReason
	Hit           *HitResult
}

// Sample converts the frame's hit into a stabilizer sample. It must only be
// called when Hit is non-nil.
func (f Frame) Sample() Sample {
	return Sample{
		WorldPosition: f.Hit.WorldPosition(),
		Plane:         f.Hit.Plane,
		CameraYaw:     f.CameraYaw,
	}
}

// Source is anything that can provide frames over time: a live AR session,
// a simulator, or a replay.
type Source interface {
	Next() (Frame, error)
}
