package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/time/rate"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/messenger-service/internal/config"
	"github.com/s21platform/messenger-service/internal/metrics"
	"github.com/s21platform/messenger-service/internal/repository/postgres"
	"github.com/s21platform/messenger-service/pkg/protocol"
)

const presenceTimeout = 5 * time.Second

type Options struct {
	AllowedOrigins  []string
	RateLimit       rate.Limit
	RateBurst       int
	SendBuffer      int
	MaxContentRunes int
	PingPeriod      time.Duration
}

func OptionsFromConfig(cfg config.Realtime) Options {
	return Options{
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimit:       rate.Limit(cfg.RateLimitRPS),
		RateBurst:       cfg.RateLimitBurst,
		SendBuffer:      cfg.SendBuffer,
		MaxContentRunes: cfg.MaxContentRunes,
		PingPeriod:      cfg.PingPeriod,
	}
}

// Server upgrades authenticated requests to sessions and routes their events.
type Server struct {
	repo      DBRepo
	tokens    TokenValidator
	presence  Presence
	hub       *Hub
	tracker   *Tracker
	persister *Persister
	metrics   *metrics.Metrics
	logger    logger_lib.LoggerInterface
	opts      Options

	now func() time.Time
}

func NewServer(
	repo DBRepo,
	tokens TokenValidator,
	presence Presence,
	hub *Hub,
	tracker *Tracker,
	persister *Persister,
	m *metrics.Metrics,
	logger logger_lib.LoggerInterface,
	opts Options,
) *Server {
	return &Server{
		repo:      repo,
		tokens:    tokens,
		presence:  presence,
		hub:       hub,
		tracker:   tracker,
		persister: persister,
		metrics:   m,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// ServeHTTP authenticates ?token=, upgrades the connection and serves the
// session until it ends.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := s.tokens.ValidateConnectToken(r.URL.Query().Get("token"))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid realtime token"})
		return
	}

	userID := claims.Subject
	username := claims.Username
	if username == "" {
		user, err := s.repo.GetUser(r.Context(), userID)
		switch {
		case err == nil:
			username = user.Username
		case !errors.Is(err, postgres.ErrNotFound):
			s.logger.Warn(fmt.Sprintf("failed to load profile of %s: %v", userID, err))
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.opts.AllowedOrigins,
	})
	if err != nil {
		s.logger.Error(fmt.Sprintf("failed to upgrade connection of %s: %v", userID, err))
		return
	}

	sess := newSession(r.Context(), conn, userID, username, s.opts, s.metrics, s.logger)
	sess.onPing = func() { s.refreshPresence(sess) }
	s.hub.Register(sess)
	s.connected(sess)

	go sess.writePump()
	sess.readPump(s.dispatch)

	s.hub.Unregister(sess)
	s.disconnected(sess)
}

// PublishMessage delivers a message that was persisted outside the realtime
// path to the live sessions of its room.
func (s *Server) PublishMessage(_ context.Context, msg protocol.Message) {
	s.deliver(msg)
}

// RemoveFromGroup drops the live sessions of userID from the group room after
// the user has left the group.
func (s *Server) RemoveFromGroup(_ context.Context, userID, groupID string) {
	if n := s.hub.Leave(userID, protocol.RoomKey(protocol.KindGroup, groupID)); n > 0 {
		s.logger.Info(fmt.Sprintf("removed %d session(s) of %s from group %s", n, userID, groupID))
	}
}

func (s *Server) deliver(msg protocol.Message) {
	var ev protocol.ServerEvent
	if msg.Kind() == protocol.KindGroup {
		ev = &protocol.NewGroupMessage{Message: msg}
	} else {
		ev = &protocol.NewMessage{Message: msg}
	}

	frame, err := protocol.Encode(ev)
	if err != nil {
		s.logger.Error(fmt.Sprintf("failed to encode message %s: %v", msg.ID, err))
		return
	}

	s.tracker.Track(msg.ID, msg.Room(), msg.SenderID, msg.Status)
	s.hub.Broadcast(msg.Room(), ev.EventName(), frame, nil)
}

func (s *Server) connected(sess *Session) {
	ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
	defer cancel()

	first, err := s.presence.Connect(ctx, sess.userID)
	if err != nil {
		s.logger.Error(fmt.Sprintf("failed to register presence: %v", err))
		return
	}
	if first {
		s.announcePresence(ctx, sess.userID, true)
	}
}

func (s *Server) refreshPresence(sess *Session) {
	ctx, cancel := context.WithTimeout(sess.ctx, presenceTimeout)
	defer cancel()

	if err := s.presence.Refresh(ctx, sess.userID); err != nil {
		s.logger.Warn(fmt.Sprintf("failed to refresh presence of %s: %v", sess.userID, err))
	}
}

func (s *Server) disconnected(sess *Session) {
	ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
	defer cancel()

	last, err := s.presence.Disconnect(ctx, sess.userID)
	if err != nil {
		s.logger.Error(fmt.Sprintf("failed to unregister presence: %v", err))
	}
	if last {
		s.announcePresence(ctx, sess.userID, false)
	}
}

// announcePresence tells every direct-conversation peer of userID about a
// presence transition.
func (s *Server) announcePresence(ctx context.Context, userID string, online bool) {
	peers, err := s.repo.GetConversationPeers(ctx, userID)
	if err != nil {
		s.logger.Error(fmt.Sprintf("failed to get conversation peers of %s: %v", userID, err))
		return
	}

	ev := &protocol.UserOnlineStatus{UserID: userID, IsOnline: online}
	frame, err := protocol.Encode(ev)
	if err != nil {
		s.logger.Error(fmt.Sprintf("failed to encode presence: %v", err))
		return
	}

	for _, peer := range peers {
		s.hub.SendToUser(peer, ev.EventName(), frame)
	}
}
