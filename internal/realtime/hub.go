package realtime

import (
	"sync"

	"github.com/s21platform/messenger-service/internal/metrics"
)

// Hub is the routing table of live sessions: rooms and users to sessions.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Session]struct{}
	users    map[string]map[*Session]struct{}
	sessions map[*Session]map[string]struct{}

	metrics *metrics.Metrics
}

func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		rooms:    make(map[string]map[*Session]struct{}),
		users:    make(map[string]map[*Session]struct{}),
		sessions: make(map[*Session]map[string]struct{}),
		metrics:  m,
	}
}

func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[s]; ok {
		return
	}
	h.sessions[s] = make(map[string]struct{})

	if h.users[s.userID] == nil {
		h.users[s.userID] = make(map[*Session]struct{})
	}
	h.users[s.userID][s] = struct{}{}

	h.metrics.ActiveSessions.Inc()
}

// Unregister removes s from every room it joined.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rooms, ok := h.sessions[s]
	if !ok {
		return
	}

	for room := range rooms {
		delete(h.rooms[room], s)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
	h.metrics.JoinedRooms.Sub(float64(len(rooms)))
	delete(h.sessions, s)

	delete(h.users[s.userID], s)
	if len(h.users[s.userID]) == 0 {
		delete(h.users, s.userID)
	}

	h.metrics.ActiveSessions.Dec()
}

// Join adds s to room. Rooms accumulate until the session ends or the user
// leaves the room.
func (h *Hub) Join(s *Session, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	rooms, ok := h.sessions[s]
	if !ok {
		return false
	}
	if _, joined := rooms[room]; joined {
		return false
	}

	rooms[room] = struct{}{}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Session]struct{})
	}
	h.rooms[room][s] = struct{}{}

	h.metrics.JoinedRooms.Inc()
	return true
}

// Leave removes every session of userID from room and returns how many were in it.
func (h *Hub) Leave(userID, room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	removed := 0
	for s := range h.users[userID] {
		if _, ok := h.rooms[room][s]; !ok {
			continue
		}
		delete(h.rooms[room], s)
		delete(h.sessions[s], room)
		removed++
	}
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}

	h.metrics.JoinedRooms.Sub(float64(removed))
	return removed
}

func (h *Hub) InRoom(s *Session, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.rooms[room][s]
	return ok
}

// Broadcast queues frame to every session of room. Sessions for which skip
// returns true are left out.
func (h *Hub) Broadcast(room string, event string, frame []byte, skip func(*Session) bool) int {
	h.mu.RLock()
	targets := make([]*Session, 0, len(h.rooms[room]))
	for s := range h.rooms[room] {
		if skip == nil || !skip(s) {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range targets {
		s.enqueue(event, frame)
	}

	return len(targets)
}

// SendToUser queues frame to every local session of userID.
func (h *Hub) SendToUser(userID string, event string, frame []byte) int {
	h.mu.RLock()
	targets := make([]*Session, 0, len(h.users[userID]))
	for s := range h.users[userID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		s.enqueue(event, frame)
	}

	return len(targets)
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[room])
}

func (h *Hub) UserSessions(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.users[userID])
}
