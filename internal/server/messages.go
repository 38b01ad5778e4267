package server

import (
	"encoding/json"
	"fmt"

	"github.com/spatialsync/arboard/internal/core/board"
	"github.com/spatialsync/arboard/internal/core/session"
)

// TransformMessage is the frame pushed to every connected viewer whenever
// the stabilized board pose changes.
type TransformMessage struct {
	Type       string     `json:"type"`
	Frame      int64      `json:"frame"`
	Mode       string     `json:"mode"`
	Position   [3]float64 `json:"position"`
	YawRadians float64    `json:"yaw_radians"`
	Scale      float64    `json:"scale"`
}

const messageTypeTransform = "transform"

func newTransformMessage(t board.Transform, mode session.Mode, frame int64) TransformMessage {
	return TransformMessage{
		Type:       messageTypeTransform,
		Frame:      frame,
		Mode:       mode.String(),
		Position:   [3]float64{t.Position.X(), t.Position.Y(), t.Position.Z()},
		YawRadians: t.YawRadians,
		Scale:      t.Scale,
	}
}

// GestureMessage is what viewers send to manipulate the board: pinch and
// rotate deltas, pan offsets, and the placing/adjusting mode toggle.
type GestureMessage struct {
	Type   string     `json:"type"`
	Kind   string     `json:"kind"`
	Factor float64    `json:"factor,omitempty"`
	Delta  float64    `json:"delta,omitempty"`
	Pan    [3]float64 `json:"pan"`
}

const (
	messageTypeGesture = "gesture"

	gesturePinch      = "pinch"
	gestureRotate     = "rotate"
	gesturePan        = "pan"
	gestureToggleMode = "toggle_mode"
)

func decodeGesture(data []byte) (GestureMessage, error) {
	var msg GestureMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return GestureMessage{}, fmt.Errorf("decode gesture: %w", err)
	}
	if msg.Type != messageTypeGesture {
		return GestureMessage{}, fmt.Errorf("unexpected message type %q", msg.Type)
	}
	switch msg.Kind {
	case gesturePinch, gestureRotate, gesturePan, gestureToggleMode:
		return msg, nil
	default:
		return GestureMessage{}, fmt.Errorf("unknown gesture kind %q", msg.Kind)
	}
}
