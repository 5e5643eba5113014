package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/messenger-service/internal/metrics"
	"github.com/s21platform/messenger-service/pkg/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Session is one authenticated WebSocket connection.
type Session struct {
	id       string
	userID   string
	username string

	conn       *websocket.Conn
	send       chan []byte
	limiter    *rate.Limiter
	pingPeriod time.Duration

	// onPing runs after every successful ping.
	onPing func()

	ctx    context.Context
	cancel context.CancelFunc

	metrics *metrics.Metrics
	logger  logger_lib.LoggerInterface
}

func newSession(ctx context.Context, conn *websocket.Conn, userID, username string, opts Options, m *metrics.Metrics, logger logger_lib.LoggerInterface) *Session {
	ctx, cancel := context.WithCancel(ctx)

	period := opts.PingPeriod
	if period <= 0 {
		period = pingPeriod
	}

	return &Session{
		id:         uuid.NewString(),
		userID:     userID,
		username:   username,
		conn:       conn,
		send:       make(chan []byte, opts.SendBuffer),
		limiter:    rate.NewLimiter(opts.RateLimit, opts.RateBurst),
		pingPeriod: period,
		ctx:        ctx,
		cancel:     cancel,
		metrics:    m,
		logger:     logger,
	}
}

func (s *Session) UserID() string   { return s.userID }
func (s *Session) Username() string { return s.username }

// enqueue never blocks: a session that cannot keep up loses the event.
func (s *Session) enqueue(event string, frame []byte) bool {
	select {
	case <-s.ctx.Done():
		return false
	default:
	}

	select {
	case s.send <- frame:
		s.metrics.EventsSent.WithLabelValues(event).Inc()
		return true
	default:
		s.metrics.EventsDropped.WithLabelValues(event).Inc()
		s.logger.Warn(fmt.Sprintf("send buffer full for session %s of user %s, dropping %s", s.id, s.userID, event))
		return false
	}
}

func (s *Session) emit(ev protocol.ServerEvent) {
	frame, err := protocol.Encode(ev)
	if err != nil {
		s.logger.Error(fmt.Sprintf("failed to encode %s: %v", ev.EventName(), err))
		return
	}
	s.enqueue(ev.EventName(), frame)
}

func (s *Session) emitError(code, message string) {
	s.metrics.EventsRejected.WithLabelValues(code).Inc()
	s.emit(&protocol.ErrorEvent{Code: code, Message: message})
}

// readPump decodes frames and hands them to dispatch until the connection
// fails or the session is cancelled.
func (s *Session) readPump(dispatch func(ctx context.Context, s *Session, ev protocol.ClientEvent)) {
	defer s.cancel()

	s.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := s.conn.Read(s.ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && s.ctx.Err() == nil {
				s.logger.Warn(fmt.Sprintf("read error for session %s of user %s: %v", s.id, s.userID, err))
			}
			return
		}

		if !s.limiter.Allow() {
			s.metrics.RateLimited.Inc()
			s.emitError(protocol.ErrCodeRateLimited, "too many events, slow down")
			continue
		}

		ev, err := protocol.DecodeClientEvent(data)
		if err != nil {
			s.emitError(protocol.ErrCodeInvalidEvent, err.Error())
			continue
		}

		s.metrics.EventsReceived.WithLabelValues(ev.EventName()).Inc()
		dispatch(s.ctx, s, ev)
	}
}

// writePump drains the send buffer and pings the peer. A failed ping means the
// peer is gone and ends the session.
func (s *Session) writePump() {
	ticker := time.NewTicker(s.pingPeriod)
	defer func() {
		ticker.Stop()
		s.cancel()
	}()

	for {
		select {
		case <-s.ctx.Done():
			_ = s.conn.Close(websocket.StatusNormalClosure, "")
			return

		case frame := <-s.send:
			ctx, cancel := context.WithTimeout(s.ctx, writeWait)
			err := s.conn.Write(ctx, websocket.MessageText, frame)
			cancel()

			if err != nil {
				if !errors.Is(err, context.Canceled) {
					s.logger.Warn(fmt.Sprintf("write error for session %s of user %s: %v", s.id, s.userID, err))
				}
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(s.ctx, pongWait)
			err := s.conn.Ping(ctx)
			cancel()

			if err != nil {
				s.logger.Warn(fmt.Sprintf("ping failed for session %s of user %s: %v", s.id, s.userID, err))
				return
			}
			if s.onPing != nil {
				s.onPing()
			}
		}
	}
}
