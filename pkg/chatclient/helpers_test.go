package chatclient

import (
	"context"
	"sync"
	"time"

	"github.com/s21platform/messenger-service/pkg/protocol"
)

type manualTimer struct {
	clock   *manualClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// manualClock fires timers only when Advance moves past them.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &manualTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)

	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

// fakeChannel records emitted events and lets a test push server events.
type fakeChannel struct {
	mu        sync.Mutex
	connected bool
	emitted   []protocol.ClientEvent
	handlers  map[string][]*Handler
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{connected: true, handlers: make(map[string][]*Handler)}
}

func (c *fakeChannel) Emit(_ context.Context, ev protocol.ClientEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return ErrNotConnected
	}
	c.emitted = append(c.emitted, ev)
	return nil
}

func (c *fakeChannel) On(event string, handler Handler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := &handler
	c.handlers[event] = append(c.handlers[event], h)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		list := c.handlers[event]
		for i := range list {
			if list[i] == h {
				c.handlers[event] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

func (c *fakeChannel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connected
}

func (c *fakeChannel) push(ev protocol.ServerEvent) {
	c.mu.Lock()
	handlers := append([]*Handler(nil), c.handlers[ev.EventName()]...)
	c.mu.Unlock()

	for _, h := range handlers {
		(*h)(ev)
	}
}

// take returns and clears the events emitted so far.
func (c *fakeChannel) take() []protocol.ClientEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.emitted
	c.emitted = nil
	return out
}

func (c *fakeChannel) subscribers(event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.handlers[event])
}

func at(minute int) time.Time {
	return time.Date(2026, 5, 1, 9, minute, 0, 0, time.UTC)
}
