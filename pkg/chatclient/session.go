package chatclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/coder/websocket"

	"github.com/s21platform/messenger-service/pkg/protocol"
)

const maxFrameSize = 64 * 1024

// Handler receives one decoded server event. Handlers run on the session's
// read loop, one at a time.
type Handler func(ev protocol.ServerEvent)

// Session is one realtime connection. It is created by the caller and
// injected where it is needed; there is no reconnect policy.
type Session struct {
	logger Logger

	mu       sync.RWMutex
	conn     *websocket.Conn
	dialing  bool
	cancel   context.CancelFunc
	done     chan struct{}
	handlers map[string]map[int]Handler
	nextID   int
}

func NewSession(logger Logger) *Session {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Session{
		logger:   logger,
		handlers: make(map[string]map[int]Handler),
	}
}

// Dial connects to the realtime endpoint at rawURL with a token from
// Client.RealtimeToken.
func (s *Session) Dial(ctx context.Context, rawURL, token string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse realtime url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	s.mu.Lock()
	switch {
	case s.conn != nil:
		s.mu.Unlock()
		return errors.New("session is already connected")
	case s.dialing:
		s.mu.Unlock()
		return errors.New("session is already dialing")
	}
	s.dialing = true
	s.mu.Unlock()

	// handshake runs unlocked
	conn, _, err := websocket.Dial(ctx, u.String(), nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialing = false

	if err != nil {
		return fmt.Errorf("failed to dial realtime channel: %w", err)
	}
	conn.SetReadLimit(maxFrameSize)

	readCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.conn = conn
	s.cancel = cancel
	s.done = done

	go s.readLoop(readCtx, conn, done)
	return nil
}

// Close ends the connection and waits for the read loop to stop.
func (s *Session) Close() error {
	s.mu.Lock()
	conn, cancel, done := s.conn, s.cancel, s.done
	s.mu.Unlock()

	if conn == nil {
		return nil
	}

	err := conn.Close(websocket.StatusNormalClosure, "")
	cancel()
	<-done
	return err
}

// Done is closed once the connection is gone.
func (s *Session) Done() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return s.done
}

func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.conn != nil
}

func (s *Session) Emit(ctx context.Context, ev protocol.ClientEvent) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	frame, err := protocol.Encode(ev)
	if err != nil {
		return err
	}

	if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
		return fmt.Errorf("failed to emit %s: %w", ev.EventName(), err)
	}
	return nil
}

// On subscribes handler to event and returns its unsubscribe function.
func (s *Session) On(event string, handler Handler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	if s.handlers[event] == nil {
		s.handlers[event] = make(map[int]Handler)
	}
	s.handlers[event][id] = handler

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.handlers[event], id)
	}
}

// Off drops every handler of event.
func (s *Session) Off(event string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.handlers, event)
}

func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
		close(done)
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && ctx.Err() == nil {
				s.logger.Warn(fmt.Sprintf("realtime channel closed: %v", err))
			}
			return
		}

		ev, err := protocol.DecodeServerEvent(data)
		if err != nil {
			s.logger.Warn(fmt.Sprintf("skipping malformed server event: %v", err))
			continue
		}

		s.dispatch(ev)
	}
}

func (s *Session) dispatch(ev protocol.ServerEvent) {
	s.mu.RLock()
	handlers := make([]Handler, 0, len(s.handlers[ev.EventName()]))
	for _, h := range s.handlers[ev.EventName()] {
		handlers = append(handlers, h)
	}
	s.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}
