package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/messenger-service/internal/metrics"
	"github.com/s21platform/messenger-service/pkg/protocol"
)

type trackedMessage struct {
	room      string
	senderID  string
	status    protocol.Status
	touchedAt time.Time
}

// Tracker holds the current delivery status of recently active messages so
// acks can be checked for monotonicity without a database round trip.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]*trackedMessage
	now     func() time.Time
	metrics *metrics.Metrics
}

func NewTracker(m *metrics.Metrics) *Tracker {
	return &Tracker{
		entries: make(map[string]*trackedMessage),
		now:     time.Now,
		metrics: m,
	}
}

// Track registers a message at its current status. An entry already present
// is kept so a racing ack is not undone.
func (t *Tracker) Track(messageID, room, senderID string, status protocol.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[messageID]; ok {
		return
	}
	t.entries[messageID] = &trackedMessage{
		room:      room,
		senderID:  senderID,
		status:    status,
		touchedAt: t.now(),
	}
	t.metrics.TrackedMessages.Set(float64(len(t.entries)))
}

func (t *Tracker) Lookup(messageID string) (trackedMessage, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[messageID]
	if !ok {
		return trackedMessage{}, false
	}
	return *entry, true
}

// Advance moves the message towards next and reports whether the stored status
// changed. Unknown ids report false.
func (t *Tracker) Advance(messageID string, next protocol.Status) (protocol.Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[messageID]
	if !ok {
		return "", false
	}

	status, advanced := protocol.Advance(entry.status, next)
	entry.status = status
	entry.touchedAt = t.now()
	return status, advanced
}

// Prune drops entries not touched for longer than ttl.
func (t *Tracker) Prune(ttl time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	deadline := t.now().Add(-ttl)
	removed := 0
	for id, entry := range t.entries {
		if entry.touchedAt.Before(deadline) {
			delete(t.entries, id)
			removed++
		}
	}
	t.metrics.TrackedMessages.Set(float64(len(t.entries)))
	return removed
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}

// RunPruner prunes the tracker on every tick of cronExpr until ctx is done.
func RunPruner(ctx context.Context, tracker *Tracker, cronExpr string, ttl time.Duration, logger logger_lib.LoggerInterface) error {
	if !gronx.IsValid(cronExpr) {
		return fmt.Errorf("invalid prune cron expression: %s", cronExpr)
	}

	for {
		next, err := gronx.NextTickAfter(cronExpr, time.Now(), false)
		if err != nil {
			return fmt.Errorf("failed to compute next prune tick: %v", err)
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if removed := tracker.Prune(ttl); removed > 0 {
			logger.Info(fmt.Sprintf("pruned %d idle messages from status tracker", removed))
		}
	}
}
