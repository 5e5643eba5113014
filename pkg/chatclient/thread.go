package chatclient

import (
	"sort"
	"sync"
	"time"

	"github.com/s21platform/messenger-service/pkg/protocol"
)

// TypingWindow is how long a typing signal keeps its user in the typing set.
const TypingWindow = 3000 * time.Millisecond

type Timer interface {
	Stop() bool
}

// Clock schedules the typing expiry; tests substitute a manual one.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type typingEntry struct {
	username string
	timer    Timer
	gen      uint64
}

// Thread is the state of one open room: ordered messages, their statuses and
// reactions, who is typing and who is online.
type Thread struct {
	kind   protocol.Kind
	roomID string
	clock  Clock

	mu       sync.Mutex
	messages []protocol.Message
	pending  map[string]protocol.Status
	typing   map[string]*typingEntry
	typingN  uint64
	online   map[string]bool
	onChange func()
}

func NewThread(kind protocol.Kind, roomID string, clock Clock) *Thread {
	if clock == nil {
		clock = systemClock{}
	}
	return &Thread{
		kind:    kind,
		roomID:  roomID,
		clock:   clock,
		pending: make(map[string]protocol.Status),
		typing:  make(map[string]*typingEntry),
		online:  make(map[string]bool),
	}
}

func (t *Thread) Kind() protocol.Kind { return t.kind }
func (t *Thread) RoomID() string      { return t.roomID }
func (t *Thread) Room() string        { return protocol.RoomKey(t.kind, t.roomID) }

// OnChange registers a callback fired after every state change. It runs
// without the thread lock held.
func (t *Thread) OnChange(f func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.onChange = f
}

func (t *Thread) changed() {
	t.mu.Lock()
	f := t.onChange
	t.mu.Unlock()

	if f != nil {
		f()
	}
}

// Load merges a fetched history into the thread.
func (t *Thread) Load(messages []protocol.Message) {
	t.mu.Lock()
	for _, msg := range messages {
		t.insertLocked(msg)
	}
	protocol.SortMessages(t.messages)
	t.mu.Unlock()

	t.changed()
}

// Add inserts msg in creation order and reports whether it was new. A copy
// already present keeps the more advanced status.
func (t *Thread) Add(msg protocol.Message) bool {
	t.mu.Lock()
	added := t.insertLocked(msg)
	protocol.SortMessages(t.messages)
	t.mu.Unlock()

	t.changed()
	return added
}

func (t *Thread) insertLocked(msg protocol.Message) bool {
	if status, ok := t.pending[msg.ID]; ok {
		msg.Status, _ = protocol.Advance(msg.Status, status)
		delete(t.pending, msg.ID)
	}

	if i := t.indexLocked(msg.ID); i >= 0 {
		t.messages[i].Status, _ = protocol.Advance(t.messages[i].Status, msg.Status)
		return false
	}

	t.messages = append(t.messages, msg)
	return true
}

func (t *Thread) indexLocked(messageID string) int {
	for i := range t.messages {
		if t.messages[i].ID == messageID {
			return i
		}
	}
	return -1
}

// ApplyStatus moves a message forward. A status for a message not received yet
// is kept and applied on arrival.
func (t *Thread) ApplyStatus(messageID string, status protocol.Status) bool {
	t.mu.Lock()
	i := t.indexLocked(messageID)
	if i < 0 {
		t.pending[messageID], _ = protocol.Advance(t.pending[messageID], status)
		t.mu.Unlock()
		return false
	}

	var advanced bool
	t.messages[i].Status, advanced = protocol.Advance(t.messages[i].Status, status)
	t.mu.Unlock()

	if advanced {
		t.changed()
	}
	return advanced
}

// ApplyReaction replaces userID's reaction on the message.
func (t *Thread) ApplyReaction(messageID, userID, emoji string) bool {
	t.mu.Lock()
	i := t.indexLocked(messageID)
	if i < 0 {
		t.mu.Unlock()
		return false
	}
	t.messages[i].Reactions = protocol.SetReaction(t.messages[i].Reactions, userID, emoji)
	t.mu.Unlock()

	t.changed()
	return true
}

func (t *Thread) Messages() []protocol.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]protocol.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Thread) Message(messageID string) (protocol.Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexLocked(messageID)
	if i < 0 {
		return protocol.Message{}, false
	}
	return t.messages[i], true
}

// Empty is true when the placeholder for an empty room should be shown.
func (t *Thread) Empty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.messages) == 0
}

// Typing marks userID as typing for the next TypingWindow. Every call
// restarts the window.
func (t *Thread) Typing(userID, username string) {
	t.mu.Lock()
	t.typingN++
	gen := t.typingN

	entry, ok := t.typing[userID]
	if ok {
		entry.timer.Stop()
	} else {
		entry = &typingEntry{}
		t.typing[userID] = entry
	}
	entry.username = username
	entry.gen = gen
	entry.timer = t.clock.AfterFunc(TypingWindow, func() {
		t.expireTyping(userID, gen)
	})
	t.mu.Unlock()

	t.changed()
}

func (t *Thread) expireTyping(userID string, gen uint64) {
	t.mu.Lock()
	entry, ok := t.typing[userID]
	if !ok || entry.gen != gen {
		t.mu.Unlock()
		return
	}
	delete(t.typing, userID)
	t.mu.Unlock()

	t.changed()
}

// TypingUsers returns the display names of users currently typing, sorted.
func (t *Thread) TypingUsers() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := make([]string, 0, len(t.typing))
	for _, entry := range t.typing {
		names = append(names, entry.username)
	}
	sort.Strings(names)
	return names
}

func (t *Thread) IsTyping(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.typing[userID]
	return ok
}

func (t *Thread) SetOnline(userID string, online bool) {
	t.mu.Lock()
	t.online[userID] = online
	t.mu.Unlock()

	t.changed()
}

func (t *Thread) IsOnline(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.online[userID]
}

// Close stops pending typing timers.
func (t *Thread) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for userID, entry := range t.typing {
		entry.timer.Stop()
		delete(t.typing, userID)
	}
}
