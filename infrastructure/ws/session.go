package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"relay-hub/contract"
	"relay-hub/domain"
	"relay-hub/observability"

	"github.com/gorilla/websocket"
)

// Options bounds one connection. Zero values are filled in by
// DefaultOptions.
type Options struct {
	SendBufferSize int
	MaxMessageSize int64
	WriteTimeout   time.Duration
	PongTimeout    time.Duration
}

func DefaultOptions() Options {
	return Options{
		SendBufferSize: 256,
		MaxMessageSize: 64 * 1024,
		WriteTimeout:   10 * time.Second,
		PongTimeout:    60 * time.Second,
	}
}

// Session owns one authenticated connection: the read pump feeding the
// router and the write pump draining the sink. It implements
// contract.Origin so the router can attribute events and report joined
// groups back for teardown.
type Session struct {
	log      *slog.Logger
	conn     *websocket.Conn
	router   contract.Router
	presence contract.Presence
	groups   contract.Groups
	monitor  *observability.Monitor
	opts     Options

	identity   string
	generation uint64
	sink       *Sink

	// joined is only touched from the read pump goroutine.
	joined []string
	done   chan struct{}
}

func newSession(
	log *slog.Logger,
	conn *websocket.Conn,
	router contract.Router,
	presence contract.Presence,
	groups contract.Groups,
	monitor *observability.Monitor,
	identity string,
	opts Options,
) *Session {
	return &Session{
		log:      log.With("user", identity),
		conn:     conn,
		router:   router,
		presence: presence,
		groups:   groups,
		monitor:  monitor,
		opts:     opts,
		identity: identity,
		sink:     NewSink(opts.SendBufferSize),
		done:     make(chan struct{}),
	}
}

func (s *Session) Identity() string {
	return s.identity
}

func (s *Session) RememberGroup(groupID string) {
	s.joined = append(s.joined, groupID)
}

// run blocks until the connection dies. The caller is expected to
// invoke it on a dedicated goroutine per connection.
func (s *Session) run(ctx context.Context) {
	s.monitor.SessionOpened()
	s.generation = s.presence.Register(s.identity, s.sink)
	s.log.Info("Session opened")

	go s.writePump(ctx)
	s.readPump(ctx)
	s.teardown()
}

func (s *Session) readPump(ctx context.Context) {
	s.conn.SetReadLimit(s.opts.MaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				s.log.Warn("Connection read failed", "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			s.log.Warn("Dropping connection on non-text frame", "message_type", messageType)
			return
		}

		ev, err := domain.ParseInbound(data)
		if err != nil {
			// A malformed frame costs the frame, not the connection
			s.monitor.DecodeFailures.Add(1)
			s.log.Warn("Discarding undecodable frame", "error", err)
			continue
		}

		s.router.Dispatch(ctx, s, ev)
	}
}

func (s *Session) writePump(ctx context.Context) {
	ticker := time.NewTicker(s.opts.PongTimeout * 9 / 10)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case event := <-s.sink.Events():
			data, err := json.Marshal(event)
			if err != nil {
				s.log.Error("Failed to encode outbound event", "error", err)
				continue
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ctx.Done():
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
			return
		}
	}
}

func (s *Session) teardown() {
	// Only evict the presence entry while it is still ours; a newer
	// session for the same identity keeps its registration.
	if s.presence.Unregister(s.identity, s.generation) {
		for _, groupID := range s.joined {
			s.groups.Leave(groupID, s.identity)
		}
	}
	close(s.done)
	s.monitor.SessionClosed()
	s.log.Info("Session closed")
}
