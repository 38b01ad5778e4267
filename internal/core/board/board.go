package board

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/stat"

	"github.com/spatialsync/arboard/internal/core/mathx"
	"github.com/spatialsync/arboard/internal/core/tracking"
	"github.com/spatialsync/arboard/pkg/sequence"
)

const (
	// MinScale and MaxScale bound the board's uniform scale, both for
	// plane fitting and for pinch gestures.
	MinScale = 0.3
	MaxScale = 11.0

	// DefaultAspectRatio is depth over width of the board rectangle
	// (2.7 x 1.5 units at unit scale).
	DefaultAspectRatio = 2.7 / 1.5

	positionWindowSize = 10
	yawWindowSize      = 20

	// When the plane's local X axis is nearly perpendicular to the
	// board's right vector, the plane's extent axes are flipped relative
	// to the board's. Empirically tuned, do not derive.
	axisFlipDotThreshold = 0.5
)

// Transform is the pose handed to the rendering collaborator every frame.
type Transform struct {
	Position   mgl64.Vec3
	YawRadians float64
	Scale      float64
}

// Board holds the stabilized pose of the rectangular overlay and the
// trailing windows that smooth it. It is a plain value store: no scene
// graph, no rendering, exclusively owned by its session.
type Board struct {
	aspect   float64
	position mgl64.Vec3
	yaw      float64
	scale    float64

	recentPositions *sequence.Window[mgl64.Vec3]
	recentYaws      *sequence.Window[float64]
}

// New creates a board with the given depth/width aspect ratio at minimum
// scale. Non-positive ratios fall back to the default.
func New(aspect float64) *Board {
	if aspect <= 0 {
		aspect = DefaultAspectRatio
	}
	return &Board{
		aspect:          aspect,
		scale:           MinScale,
		recentPositions: sequence.NewWindow[mgl64.Vec3](positionWindowSize),
		recentYaws:      sequence.NewWindow[float64](yawWindowSize),
	}
}

// Update consumes one hit-test sample: the position is folded into the
// trailing average, orientation follows the plane when one is known and
// the camera otherwise, and scale and position are fitted to the plane's
// footprint.
func (b *Board) Update(s tracking.Sample) {
	b.recentPositions.Push(s.WorldPosition)
	b.position = mathx.MeanVec3(b.recentPositions.Values())

	if s.Plane == nil {
		b.orientToCamera(s.CameraYaw)
		b.scale = MinScale
		return
	}
	b.orientToPlane(*s.Plane, s.CameraYaw)
	b.scaleToPlane(*s.Plane)
	b.adjustPosition(*s.Plane)
}

func (b *Board) orientToCamera(cameraYaw float64) {
	b.rotateTo(cameraYaw)
}

// orientToPlane aims the board along the plane's major axis, modulo the
// rectangle's half-turn symmetry, picking the representative facing the
// camera.
func (b *Board) orientToPlane(p tracking.Plane, cameraYaw float64) {
	yaw := mathx.YawFromTransform(p.Transform)
	if p.Extent.X() > p.Extent.Y() {
		// Plane is wider along its local X; quarter-turn so the
		// board's long side tracks the plane's long side.
		yaw += math.Pi / 2
	}
	b.rotateTo(mathx.NormalizeYaw(yaw, cameraYaw))
}

// rotateTo folds a target yaw into the trailing yaw window. If the target
// sits more than a quarter turn from the window's current mean, the whole
// window straddles a symmetry flip: every entry is remapped to its
// representative nearest the target before the target is appended,
// otherwise the average would spin through the flip.
func (b *Board) rotateTo(target float64) {
	previous := 0.0
	if !b.recentYaws.IsEmpty() {
		previous = stat.Mean(b.recentYaws.Values(), nil)
	}
	if math.Abs(target-previous) > math.Pi/2 {
		b.recentYaws.Map(func(yaw float64) float64 {
			return mathx.NormalizeYaw(yaw, target)
		})
	}
	b.recentYaws.Push(target)
	b.yaw = stat.Mean(b.recentYaws.Values(), nil)
}

// scaleToPlane sets the uniform scale to the width of the largest
// fixed-aspect rectangle that fits the plane's extent box, clamped to the
// scale bounds: a plane smaller than the minimum footprint still yields
// MinScale, so the invariant on Scale holds regardless of plane size.
func (b *Board) scaleToPlane(p tracking.Plane) {
	extentX, extentZ := p.Extent.X(), p.Extent.Y()
	if math.Abs(p.XAxis().Dot(mathx.YawRight(b.yaw))) < axisFlipDotThreshold {
		extentX, extentZ = extentZ, extentX
	}
	width := math.Min(extentX, MaxScale)
	depth := math.Min(extentZ, width*b.aspect)
	width = depth / b.aspect
	b.scale = math.Max(width, MinScale)
}

// adjustPosition pulls the board flush with the plane's boundary wherever
// its footprint overhangs, working in the plane's local frame. This is a
// hard correction: it writes the position directly and leaves the
// smoothing window untouched.
func (b *Board) adjustPosition(p tracking.Plane) {
	local := p.ToLocal(b.position)
	halfWidth := b.scale / 2
	halfDepth := b.scale * b.aspect / 2

	planeMinX := p.Center.X() - p.Extent.X()/2
	planeMaxX := p.Center.X() + p.Extent.X()/2
	planeMinZ := p.Center.Z() - p.Extent.Y()/2
	planeMaxZ := p.Center.Z() + p.Extent.Y()/2

	adjusted := false
	if local.X()-halfWidth < planeMinX {
		local[0] += planeMinX - (local.X() - halfWidth)
		adjusted = true
	}
	if local.X()+halfWidth > planeMaxX {
		local[0] -= (local.X() + halfWidth) - planeMaxX
		adjusted = true
	}
	if local.Z()-halfDepth < planeMinZ {
		local[2] += planeMinZ - (local.Z() - halfDepth)
		adjusted = true
	}
	if local.Z()+halfDepth > planeMaxZ {
		local[2] -= (local.Z() + halfDepth) - planeMaxZ
		adjusted = true
	}

	if adjusted {
		b.position = p.ToWorld(local)
	}
}

// ScaleBy applies a pinch factor immediately, clamped to the scale bounds.
func (b *Board) ScaleBy(factor float64) {
	b.scale = mathx.Clamp(b.scale*factor, MinScale, MaxScale)
}

// RotateBy applies a rotation gesture delta directly, bypassing the
// averaging window.
func (b *Board) RotateBy(delta float64) {
	b.yaw += delta
}

// MoveBy applies a pan gesture delta directly, bypassing the averaging
// window.
func (b *Board) MoveBy(delta mgl64.Vec3) {
	b.position = b.position.Add(delta)
}

// AspectRatio returns the fixed depth/width ratio.
func (b *Board) AspectRatio() float64 {
	return b.aspect
}

// Scale returns the current uniform scale.
func (b *Board) Scale() float64 {
	return b.scale
}

// Footprint returns the board rectangle's world-space width and depth.
func (b *Board) Footprint() (width, depth float64) {
	return b.scale, b.scale * b.aspect
}

// Transform snapshots the pose for the renderer.
func (b *Board) Transform() Transform {
	return Transform{
		Position:   b.position,
		YawRadians: b.yaw,
		Scale:      b.scale,
	}
}

// Digest hashes the full board state, smoothing windows included. Frames
// that touch nothing leave the digest unchanged, which is how sessions
// detect whether there is anything new to publish.
func (b *Board) Digest() uint64 {
	h := xxhash.New()
	var buf [8]byte
	writeFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = h.Write(buf[:])
	}
	for i := 0; i < 3; i++ {
		writeFloat(b.position[i])
	}
	writeFloat(b.yaw)
	writeFloat(b.scale)
	for _, v := range b.recentPositions.Values() {
		for i := 0; i < 3; i++ {
			writeFloat(v[i])
		}
	}
	for _, yaw := range b.recentYaws.Values() {
		writeFloat(yaw)
	}
	return h.Sum64()
}
