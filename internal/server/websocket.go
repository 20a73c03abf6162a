package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/midnightbrew/internal/carousel"
	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/logging"
	"github.com/muurk/midnightbrew/internal/stream"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Frames queued for a slow client before new ones are dropped
	sendBuffer = 64
)

// handleTestimonials upgrades to a WebSocket and runs a carousel over the
// testimonials for this connection alone. Every state change is pushed as
// a frame; client commands drive navigation.
func (s *Server) handleTestimonials(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		logging.Debug("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	remoteAddr := r.RemoteAddr

	s.mu.Lock()
	s.activeConns[remoteAddr] = conn
	s.wg.Add(1)
	s.mu.Unlock()
	websocketClients.Inc()

	logging.LogConnection(remoteAddr, "websocket_upgraded")

	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.activeConns, remoteAddr)
		s.mu.Unlock()
		websocketClients.Dec()
		logging.LogConnection(remoteAddr, "websocket_closed")
		s.wg.Done()
	}()

	out := make(chan stream.Message, sendBuffer)
	enqueue := func(msg stream.Message) {
		select {
		case out <- msg:
		default:
			logging.Debug("Dropping frame for slow client", zap.String("remote_addr", remoteAddr))
		}
	}

	c := carousel.New(s.catalog.Testimonials, carousel.Options{
		Name:            "testimonials " + remoteAddr,
		Clock:           s.clock,
		Interval:        s.config.AutoplayInterval,
		JumpToIndicator: r.URL.Query().Get("jump") == "true",
		OnChange: func(f carousel.Frame) {
			enqueue(stream.Message{Type: stream.TypeFrame, Frame: stream.FrameFrom(f)})
		},
	})
	defer c.Close()

	enqueue(stream.Message{Type: stream.TypeItems, Items: c.Items()})
	enqueue(stream.Message{Type: stream.TypeFrame, Frame: stream.FrameFrom(c.Snapshot())})

	done := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writePump(conn, remoteAddr, out, done)
	}()
	defer func() {
		close(done)
		<-writerDone
	}()

	c.Start()
	s.readPump(conn, remoteAddr, c, enqueue)
}

// readPump applies client commands until the connection fails.
func (s *Server) readPump(conn *websocket.Conn, remoteAddr string, c *carousel.Carousel[catalog.Testimonial], enqueue func(stream.Message)) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var cmd stream.Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Info("Connection closed or error reading command",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		result, ok := applyCommand(c, cmd)
		if !ok {
			enqueue(stream.Message{Type: stream.TypeError, Error: "unknown command " + cmd.Command})
			continue
		}
		recordCarouselCommandMetric(cmd.Command, result.String())
		logging.Debug("Carousel command",
			zap.String("remote_addr", remoteAddr),
			zap.String("command", cmd.Command),
			zap.String("result", result.String()),
		)
	}
}

// applyCommand maps a wire command onto the carousel. ok is false for an
// unknown command.
func applyCommand(c *carousel.Carousel[catalog.Testimonial], cmd stream.Command) (carousel.Result, bool) {
	switch cmd.Command {
	case stream.CommandNext:
		return c.Next(), true
	case stream.CommandPrev:
		return c.Prev(), true
	case stream.CommandGoTo:
		return c.GoTo(cmd.Index), true
	case stream.CommandSwipe:
		return c.OnSwipe(cmd.DeltaX), true
	case stream.CommandPause:
		c.SetPaused(true)
		return carousel.Moved, true
	case stream.CommandResume:
		c.SetPaused(false)
		return carousel.Moved, true
	case stream.CommandReset:
		c.Reset()
		return carousel.Moved, true
	default:
		return carousel.Ignored, false
	}
}

// writePump sends queued messages and keepalive pings until done closes
// or a write fails.
func (s *Server) writePump(conn *websocket.Conn, remoteAddr string, out <-chan stream.Message, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				logging.Debug("Failed to write message",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
				// Unblock the reader
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = conn.Close()
				return
			}
		case <-done:
			return
		}
	}
}
