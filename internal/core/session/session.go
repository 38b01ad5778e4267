// Package session glues the tracking collaborator to the board stabilizer:
// it gates per-frame updates on placement mode, filters unusable hits, and
// publishes events when the stabilized transform actually changes.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/spatialsync/arboard/internal/core/board"
	"github.com/spatialsync/arboard/internal/core/events"
	"github.com/spatialsync/arboard/internal/core/observability/log"
	"github.com/spatialsync/arboard/internal/core/tracking"
)

// Mode is the two-state placement toggle: while placing, the board follows
// the detected plane; while adjusting, only manual gestures move it.
type Mode uint8

const (
	ModePlacing Mode = iota
	ModeAdjusting
)

func (m Mode) String() string {
	if m == ModeAdjusting {
		return "adjusting"
	}
	return "placing"
}

// DefaultMinHitDistance rejects hit tests closer than half a unit while
// placing; nearer hits are degenerate (the camera is practically touching
// the surface).
const DefaultMinHitDistance = 0.5

type Config struct {
	AspectRatio    float64
	MinHitDistance float64
}

func DefaultConfig() Config {
	return Config{
		AspectRatio:    board.DefaultAspectRatio,
		MinHitDistance: DefaultMinHitDistance,
	}
}

// ModeChangedData is the payload of TypeModeChanged events.
type ModeChangedData struct {
	Mode Mode
}

// TrackingChangedData is the payload of TypeTrackingChanged events.
type TrackingChangedData struct {
	State  tracking.State
	Reason tracking.LimitedReason
}

// TransformUpdatedData is the payload of TypeTransformUpdated events. It
// carries everything a consumer needs so handlers never have to call back
// into the session.
type TransformUpdatedData struct {
	Transform board.Transform
	Mode      Mode
	Frame     int64
}

// Session owns the board and serializes all access to it. Frames arrive
// from the source on the caller's loop; gestures may arrive from transport
// goroutines, so every entry point takes the session lock. Events are
// published after the lock is released, so handlers may query the session.
type Session struct {
	mu sync.Mutex

	id     uuid.UUID
	logger log.Log
	bus    *events.Bus
	source tracking.Source
	board  *board.Board

	mode           Mode
	minHitDistance float64

	frames     int64
	haveState  bool
	lastState  tracking.State
	lastDigest uint64
}

func New(cfg Config, source tracking.Source, bus *events.Bus, logger log.Log) *Session {
	if cfg.MinHitDistance <= 0 {
		cfg.MinHitDistance = DefaultMinHitDistance
	}
	id := uuid.New()
	b := board.New(cfg.AspectRatio)
	return &Session{
		id:             id,
		logger:         logger.With(log.String("session", id.String())),
		bus:            bus,
		source:         source,
		board:          b,
		minHitDistance: cfg.MinHitDistance,
		lastDigest:     b.Digest(),
	}
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

// Step pulls one frame from the source and processes it.
func (s *Session) Step() error {
	frame, err := s.source.Next()
	if err != nil {
		return fmt.Errorf("tracking source: %w", err)
	}
	s.HandleFrame(frame)
	return nil
}

// Run steps the session at the given frame interval until the context is
// canceled.
func (s *Session) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Step(); err != nil {
				return err
			}
		}
	}
}

// HandleFrame consumes one tracking frame. A frame with no hit leaves the
// board untouched; so do frames arriving while the user is adjusting, and
// hits closer than the minimum distance.
func (s *Session) HandleFrame(f tracking.Frame) {
	s.mu.Lock()
	var pending []events.Event

	s.frames++

	if !s.haveState || f.State != s.lastState {
		s.haveState = true
		s.lastState = f.State
		pending = append(pending, events.New(events.TypeTrackingChanged, TrackingChangedData{
			State:  f.State,
			Reason: f.LimitedReason,
		}))
	}

	switch {
	case f.Hit == nil || s.mode != ModePlacing:
		// keep the previous transform
	case f.Hit.Distance < s.minHitDistance:
		s.logger.Debug("ignoring close hit", log.Float64("distance", f.Hit.Distance))
	default:
		s.board.Update(f.Sample())
		pending = s.appendIfChanged(pending)
	}

	s.mu.Unlock()
	s.publish(pending)
}

// SetMode switches the placement mode, announcing the change.
func (s *Session) SetMode(m Mode) {
	s.mu.Lock()
	if m == s.mode {
		s.mu.Unlock()
		return
	}
	s.mode = m
	s.mu.Unlock()

	s.logger.Info("placement mode changed", log.String("mode", m.String()))
	s.publish([]events.Event{events.New(events.TypeModeChanged, ModeChangedData{Mode: m})})
}

// ToggleMode flips between placing and adjusting.
func (s *Session) ToggleMode() {
	s.mu.Lock()
	next := ModePlacing
	if s.mode == ModePlacing {
		next = ModeAdjusting
	}
	s.mu.Unlock()
	s.SetMode(next)
}

// PinchBy applies a pinch scale gesture. Gestures only act while
// adjusting; it reports whether the gesture was applied.
func (s *Session) PinchBy(factor float64) bool {
	return s.gesture(func(b *board.Board) { b.ScaleBy(factor) })
}

// RotateBy applies a rotation gesture delta in radians.
func (s *Session) RotateBy(delta float64) bool {
	return s.gesture(func(b *board.Board) { b.RotateBy(delta) })
}

// PanBy applies a pan gesture delta in world units.
func (s *Session) PanBy(delta mgl64.Vec3) bool {
	return s.gesture(func(b *board.Board) { b.MoveBy(delta) })
}

func (s *Session) gesture(apply func(*board.Board)) bool {
	s.mu.Lock()
	if s.mode != ModeAdjusting {
		s.mu.Unlock()
		return false
	}
	apply(s.board)
	pending := s.appendIfChanged(nil)
	s.mu.Unlock()

	s.publish(pending)
	return true
}

// Mode returns the current placement mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Transform snapshots the board pose for the renderer.
func (s *Session) Transform() board.Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Transform()
}

// Decor snapshots the board's border and fill geometry.
func (s *Session) Decor() board.Decor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Decor()
}

// Frames reports how many frames the session has consumed.
func (s *Session) Frames() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// appendIfChanged adds a transform event when the board state digest
// moved. Callers must hold the session lock.
func (s *Session) appendIfChanged(pending []events.Event) []events.Event {
	digest := s.board.Digest()
	if digest == s.lastDigest {
		return pending
	}
	s.lastDigest = digest
	return append(pending, events.New(events.TypeTransformUpdated, TransformUpdatedData{
		Transform: s.board.Transform(),
		Mode:      s.mode,
		Frame:     s.frames,
	}))
}

func (s *Session) publish(pending []events.Event) {
	for _, e := range pending {
		s.bus.Publish(e)
	}
}
