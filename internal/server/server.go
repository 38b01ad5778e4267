// Package server streams stabilized board transforms to websocket viewers
// and feeds their gestures back into the session.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/spatialsync/arboard/internal/config"
	"github.com/spatialsync/arboard/internal/core/events"
	"github.com/spatialsync/arboard/internal/core/observability/log"
	"github.com/spatialsync/arboard/internal/core/session"
)

// ErrServerFull is returned to connections past the configured client cap.
var ErrServerFull = errors.New("server full")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Server is the websocket hub. It subscribes to the session's transform
// events and fans them out; inbound messages are parsed as gestures and
// applied to the session.
type Server struct {
	cfg     config.ServerConfig
	logger  log.Log
	session *session.Session
	bus     *events.Bus

	mu      sync.Mutex
	clients map[string]*client

	sub *events.Subscription
}

// New builds the hub and subscribes it to transform events, so broadcasts
// work for embedders that mount Handler() without calling Run. Close
// releases the subscription.
func New(cfg config.ServerConfig, sess *session.Session, bus *events.Bus, logger log.Log) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		session: sess,
		bus:     bus,
		clients: make(map[string]*client),
	}
	s.sub = bus.Subscribe(events.TypeTransformUpdated, s.onTransform)
	return s
}

// Close cancels the event subscription and disconnects every viewer.
func (s *Server) Close() {
	s.sub.Cancel()
	s.closeClients()
}

// Run serves until the context is canceled. It owns the listener lifecycle.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Handler: s.Handler()}
	s.logger.Info("viewer server listening", log.String("addr", listener.Addr().String()))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.Close()
		return httpServer.Shutdown(context.Background())
	})
	return g.Wait()
}

// Handler exposes the websocket endpoint; split out so tests can mount it
// on httptest servers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	c, err := s.register(conn)
	if err != nil {
		s.logger.Warn("rejecting viewer", log.Error(err))
		_ = conn.Close()
		return
	}
	s.logger.Info("viewer connected", log.String("client", c.id))

	// Seed the new viewer with the current pose.
	c.enqueue(s.encodeTransform())

	go c.writePump()
	c.readPump() // blocks until the connection dies
	s.unregister(c)
	s.logger.Info("viewer disconnected", log.String("client", c.id))
}

func (s *Server) register(conn *websocket.Conn) (*client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.clients) >= s.cfg.MaxClients {
		return nil, ErrServerFull
	}
	c := newClient(conn, s)
	s.clients[c.id] = c
	return c, nil
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
	c.close()
}

func (s *Server) closeClients() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.clients = make(map[string]*client)
	s.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

// ClientCount reports connected viewers.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) onTransform(e events.Event) {
	update, ok := e.Data.(session.TransformUpdatedData)
	if !ok {
		return
	}
	s.broadcast(s.encode(newTransformMessage(update.Transform, update.Mode, update.Frame)))
}

func (s *Server) encodeTransform() []byte {
	return s.encode(newTransformMessage(s.session.Transform(), s.session.Mode(), s.session.Frames()))
}

func (s *Server) encode(msg TransformMessage) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		// The message is plain floats and strings; this cannot fail.
		s.logger.Error("encode transform", log.Error(err))
		return nil
	}
	return data
}

func (s *Server) broadcast(data []byte) {
	if data == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		c.enqueue(data)
	}
}

// applyGesture maps a decoded gesture onto the session. It reports whether
// the session accepted it (gestures are refused outside adjusting mode,
// except the mode toggle itself).
func (s *Server) applyGesture(msg GestureMessage) bool {
	switch msg.Kind {
	case gesturePinch:
		return s.session.PinchBy(msg.Factor)
	case gestureRotate:
		return s.session.RotateBy(msg.Delta)
	case gesturePan:
		return s.session.PanBy(mgl64.Vec3{msg.Pan[0], msg.Pan[1], msg.Pan[2]})
	case gestureToggleMode:
		s.session.ToggleMode()
		return true
	default:
		return false
	}
}
