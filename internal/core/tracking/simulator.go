package tracking

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// SimulatorConfig tunes the synthetic tracking source. Jitter values are
// standard deviations; dropout values are per-frame probabilities in [0,1].
type SimulatorConfig struct {
	Seed           int64
	PlaneYaw       float64
	PlaneOrigin    mgl64.Vec3
	PlaneExtent    mgl64.Vec2
	CameraYaw      float64
	CameraYawDrift float64
	PositionJitter float64
	YawJitter      float64
	HitDropout     float64
	PlaneDropout   float64
	HitDistance    float64
}

// DefaultSimulatorConfig returns a tabletop-sized plane with mild sensor
// noise, deterministic under its seed.
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		Seed:           1,
		PlaneYaw:       0.4,
		PlaneOrigin:    mgl64.Vec3{0, -0.6, -1.2},
		PlaneExtent:    mgl64.Vec2{1.6, 2.4},
		CameraYaw:      0.1,
		CameraYawDrift: 0.002,
		PositionJitter: 0.01,
		YawJitter:      0.005,
		HitDropout:     0.05,
		PlaneDropout:   0.1,
		HitDistance:    1.3,
	}
}

// Simulator is a stand-in for a live AR session: it emits frames whose hit
// tests land near the center of a fixed synthetic plane, with gaussian
// jitter and occasional dropouts. It is not a tracker; it exists so the
// demo binary and tests have a deterministic collaborator.
type Simulator struct {
	cfg   SimulatorConfig
	rng   *rand.Rand
	plane Plane
	yaw   float64
	frame int64
}

var _ Source = (*Simulator)(nil)

func NewSimulator(cfg SimulatorConfig) *Simulator {
	transform := mgl64.Translate3D(cfg.PlaneOrigin.X(), cfg.PlaneOrigin.Y(), cfg.PlaneOrigin.Z()).
		Mul4(mgl64.HomogRotate3DY(cfg.PlaneYaw))
	return &Simulator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
		plane: Plane{
			Transform: transform,
			Center:    mgl64.Vec3{},
			Extent:    cfg.PlaneExtent,
		},
		yaw: cfg.CameraYaw,
	}
}

// Plane exposes the synthetic plane, mainly for assertions in tests.
func (s *Simulator) Plane() Plane {
	return s.plane
}

// Next produces the next synthetic frame. It never returns an error; the
// Source interface keeps the signature shared with live sessions that can.
func (s *Simulator) Next() (Frame, error) {
	s.frame++
	s.yaw += s.cfg.CameraYawDrift + s.rng.NormFloat64()*s.cfg.YawJitter

	frame := Frame{
		CameraYaw: s.yaw,
		State:     StateNormal,
	}

	if s.rng.Float64() < s.cfg.HitDropout {
		return frame, nil
	}

	jitter := mgl64.Vec3{
		s.rng.NormFloat64() * s.cfg.PositionJitter,
		s.rng.NormFloat64() * s.cfg.PositionJitter,
		s.rng.NormFloat64() * s.cfg.PositionJitter,
	}
	hitPos := s.plane.ToWorld(s.plane.Center).Add(jitter)

	hit := &HitResult{
		WorldTransform: mgl64.Translate3D(hitPos.X(), hitPos.Y(), hitPos.Z()),
		Distance:       s.cfg.HitDistance + math.Abs(s.rng.NormFloat64()*s.cfg.PositionJitter),
	}
	if s.rng.Float64() >= s.cfg.PlaneDropout {
		plane := s.plane
		hit.Plane = &plane
	}
	frame.Hit = hit
	return frame, nil
}
