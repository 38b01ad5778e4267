package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spatialsync/arboard/internal/config"
	"github.com/spatialsync/arboard/internal/core/events"
	"github.com/spatialsync/arboard/internal/core/observability/log"
	"github.com/spatialsync/arboard/internal/core/session"
	"github.com/spatialsync/arboard/internal/core/tracking"
)

func newTestServer(t *testing.T) (*Server, *session.Session) {
	t.Helper()
	bus := events.NewBus()
	sim := tracking.NewSimulator(tracking.DefaultSimulatorConfig())
	sess := session.New(session.DefaultConfig(), sim, bus, log.Nop())
	return New(config.Default().Server, sess, bus, log.Nop()), sess
}

func TestDecodeGesture(t *testing.T) {
	msg, err := decodeGesture([]byte(`{"type":"gesture","kind":"pinch","factor":1.5}`))
	require.NoError(t, err)
	assert.Equal(t, gesturePinch, msg.Kind)
	assert.Equal(t, 1.5, msg.Factor)

	_, err = decodeGesture([]byte(`{"type":"gesture","kind":"wave"}`))
	assert.Error(t, err)

	_, err = decodeGesture([]byte(`{"type":"transform"}`))
	assert.Error(t, err)

	_, err = decodeGesture([]byte(`not json`))
	assert.Error(t, err)
}

func TestApplyGesture_ModeGate(t *testing.T) {
	srv, sess := newTestServer(t)

	assert.False(t, srv.applyGesture(GestureMessage{Kind: gesturePinch, Factor: 2}))

	assert.True(t, srv.applyGesture(GestureMessage{Kind: gestureToggleMode}))
	require.Equal(t, session.ModeAdjusting, sess.Mode())

	assert.True(t, srv.applyGesture(GestureMessage{Kind: gesturePinch, Factor: 2}))
	assert.True(t, srv.applyGesture(GestureMessage{Kind: gestureRotate, Delta: 0.2}))
	assert.True(t, srv.applyGesture(GestureMessage{Kind: gesturePan, Pan: [3]float64{1, 0, 0}}))

	tr := sess.Transform()
	assert.InDelta(t, 0.6, tr.Scale, 1e-12)
	assert.InDelta(t, 0.2, tr.YawRadians, 1e-12)
}

func TestTransformMessageRoundTrip(t *testing.T) {
	_, sess := newTestServer(t)
	msg := newTransformMessage(sess.Transform(), sess.Mode(), sess.Frames())

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded TransformMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, msg, decoded)
	assert.Equal(t, messageTypeTransform, decoded.Type)
	assert.Equal(t, "placing", decoded.Mode)
}

func TestWebSocket_SeedsAndBroadcasts(t *testing.T) {
	srv, sess := newTestServer(t)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Initial snapshot arrives without any session activity.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var seed TransformMessage
	require.NoError(t, conn.ReadJSON(&seed))
	assert.Equal(t, messageTypeTransform, seed.Type)

	// A gesture from the viewer round-trips into a broadcast.
	require.NoError(t, conn.WriteJSON(GestureMessage{Type: messageTypeGesture, Kind: gestureToggleMode}))
	require.Eventually(t, func() bool {
		return sess.Mode() == session.ModeAdjusting
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(GestureMessage{Type: messageTypeGesture, Kind: gesturePinch, Factor: 3}))

	var update TransformMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&update))
	assert.InDelta(t, 0.9, update.Scale, 1e-9)
	assert.Equal(t, "adjusting", update.Mode)
}

func TestClose_StopsBroadcastsAndDisconnects(t *testing.T) {
	srv, sess := newTestServer(t)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var seed TransformMessage
	require.NoError(t, conn.ReadJSON(&seed))

	srv.Close()
	assert.Equal(t, 0, srv.ClientCount())

	// The subscription is gone, so transform updates no longer reach the
	// (now closed) connection.
	sess.ToggleMode()
	sess.PinchBy(2)
	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestGestureMessageMarshal_CarriesPan(t *testing.T) {
	data, err := json.Marshal(GestureMessage{
		Type: messageTypeGesture,
		Kind: gesturePan,
		Pan:  [3]float64{0.1, 0, -0.2},
	})
	require.NoError(t, err)

	msg, err := decodeGesture(data)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{0.1, 0, -0.2}, msg.Pan)
	assert.Contains(t, string(data), `"pan"`)
}

func TestRegister_EnforcesClientCap(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.cfg.MaxClients = 1

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer first.Close()

	require.Eventually(t, func() bool { return srv.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	second, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "upgrade succeeds before the cap check")
	defer second.Close()

	// The server closes the second connection immediately.
	_ = second.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = second.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 1, srv.ClientCount())
}
