package chatclient

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/s21platform/messenger-service/pkg/protocol"
)

const emitTimeout = 5 * time.Second

// ChatView drives one open conversation or group: it resolves the room,
// loads history, joins the room and keeps the Thread in sync with the
// realtime channel.
type ChatView struct {
	self     string
	username string
	resolver *Resolver
	store    *Store
	channel  Channel
	logger   Logger
	clock    Clock

	mu      sync.Mutex
	thread  *Thread
	peerID  string
	visible bool
	sending bool
	subs    []func()
}

type ViewOption func(*ChatView)

func WithClock(clock Clock) ViewOption {
	return func(v *ChatView) { v.clock = clock }
}

func WithViewLogger(logger Logger) ViewOption {
	return func(v *ChatView) { v.logger = logger }
}

// WithUsername sets the display name sent with group messages and typing.
func WithUsername(username string) ViewOption {
	return func(v *ChatView) { v.username = username }
}

func NewChatView(self string, resolver *Resolver, store *Store, channel Channel, opts ...ViewOption) *ChatView {
	v := &ChatView{
		self:     self,
		resolver: resolver,
		store:    store,
		channel:  channel,
		logger:   nopLogger{},
		clock:    systemClock{},
		visible:  true,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Thread returns the open room, nil until an Open call succeeded.
func (v *ChatView) Thread() *Thread {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.thread
}

// OpenDirect opens the conversation with peerID, creating it on first contact.
// On failure the view stays unresolved and Send refuses.
func (v *ChatView) OpenDirect(ctx context.Context, peerID string) error {
	conversationID, err := v.resolver.ResolveDirectConversation(ctx, peerID)
	if err != nil {
		return err
	}

	v.open(ctx, NewThread(protocol.KindDirect, conversationID, v.clock), peerID, &protocol.JoinConversation{ConversationID: conversationID})
	return nil
}

func (v *ChatView) OpenGroup(ctx context.Context, groupID string) error {
	if _, err := v.resolver.ResolveGroupMembers(ctx, groupID); err != nil {
		return err
	}

	v.open(ctx, NewThread(protocol.KindGroup, groupID, v.clock), "", &protocol.JoinGroup{GroupID: groupID})
	return nil
}

func (v *ChatView) open(ctx context.Context, thread *Thread, peerID string, join protocol.ClientEvent) {
	v.Close()

	v.mu.Lock()
	v.thread = thread
	v.peerID = peerID
	v.subscribeLocked(thread)
	v.mu.Unlock()

	thread.Load(v.store.FetchHistory(ctx, thread.RoomID(), thread.Kind()))

	if !v.channel.Connected() {
		v.logger.Warn(fmt.Sprintf("realtime channel is down, %s opened without live updates", thread.Room()))
		return
	}

	if err := v.channel.Emit(ctx, join); err != nil {
		v.logger.Error(fmt.Sprintf("failed to join %s: %v", thread.Room(), err))
		return
	}

	if v.isVisible() {
		v.acknowledgeSeen(ctx, thread)
	}
}

// Close unsubscribes from the channel. The thread stays readable.
func (v *ChatView) Close() {
	v.mu.Lock()
	subs := v.subs
	v.subs = nil
	thread := v.thread
	v.mu.Unlock()

	for _, unsubscribe := range subs {
		unsubscribe()
	}
	if thread != nil {
		thread.Close()
	}
}

// SetVisible tells the view whether its messages are on screen. Becoming
// visible acknowledges every unseen message as seen.
func (v *ChatView) SetVisible(ctx context.Context, visible bool) {
	v.mu.Lock()
	v.visible = visible
	thread := v.thread
	v.mu.Unlock()

	if visible && thread != nil && v.channel.Connected() {
		v.acknowledgeSeen(ctx, thread)
	}
}

func (v *ChatView) isVisible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.visible
}

// Send emits content to the open room. A second Send is refused while the
// previous emission is still in flight. Without a realtime connection a
// direct message is written over REST instead.
func (v *ChatView) Send(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}

	v.mu.Lock()
	thread, peerID := v.thread, v.peerID
	if thread == nil {
		v.mu.Unlock()
		return ErrNotResolved
	}
	if v.sending {
		v.mu.Unlock()
		return ErrSendInFlight
	}
	v.sending = true
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.sending = false
		v.mu.Unlock()
	}()

	if !v.channel.Connected() {
		if thread.Kind() == protocol.KindGroup {
			return ErrNotConnected
		}
		v.store.Persist(ctx, SendMessageRequest{
			SenderID:       v.self,
			RecipientID:    peerID,
			ConversationID: thread.RoomID(),
			Content:        content,
		})
		return nil
	}

	var ev protocol.ClientEvent
	if thread.Kind() == protocol.KindGroup {
		ev = &protocol.SendGroupMessage{
			SenderID:   v.self,
			SenderName: v.username,
			GroupID:    thread.RoomID(),
			Content:    content,
		}
	} else {
		ev = &protocol.SendMessage{
			SenderID:       v.self,
			RecipientID:    peerID,
			ConversationID: thread.RoomID(),
			Content:        content,
		}
	}

	return v.channel.Emit(ctx, ev)
}

func (v *ChatView) NotifyTyping(ctx context.Context) error {
	thread := v.Thread()
	if thread == nil {
		return ErrNotResolved
	}

	ev := &protocol.UserTyping{UserID: v.self, Username: v.username}
	if thread.Kind() == protocol.KindGroup {
		ev.GroupID = thread.RoomID()
	} else {
		ev.ConversationID = thread.RoomID()
	}

	return v.channel.Emit(ctx, ev)
}

func (v *ChatView) React(ctx context.Context, messageID, emoji string) error {
	thread := v.Thread()
	if thread == nil {
		return ErrNotResolved
	}

	ev := &protocol.ReactMessage{MessageID: messageID, UserID: v.self, Emoji: emoji}
	if thread.Kind() == protocol.KindGroup {
		ev.GroupID = thread.RoomID()
	} else {
		ev.ConversationID = thread.RoomID()
	}

	return v.channel.Emit(ctx, ev)
}

func (v *ChatView) subscribeLocked(thread *Thread) {
	onMessage := func(msg protocol.Message) {
		if msg.Room() != thread.Room() {
			return
		}
		thread.Add(msg)

		if msg.SenderID == v.self {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()

		v.acknowledge(ctx, thread, msg.ID, false)
		if v.isVisible() {
			v.acknowledge(ctx, thread, msg.ID, true)
		}
	}

	v.subs = append(v.subs,
		v.channel.On(protocol.EventNewMessage, func(ev protocol.ServerEvent) {
			if e, ok := ev.(*protocol.NewMessage); ok {
				onMessage(e.Message)
			}
		}),
		v.channel.On(protocol.EventNewGroupMessage, func(ev protocol.ServerEvent) {
			if e, ok := ev.(*protocol.NewGroupMessage); ok {
				onMessage(e.Message)
			}
		}),
		v.channel.On(protocol.EventMessageStatus, func(ev protocol.ServerEvent) {
			e, ok := ev.(*protocol.MessageStatusUpdate)
			if ok && thread.Kind() == protocol.KindDirect && (e.ConversationID == "" || e.ConversationID == thread.RoomID()) {
				thread.ApplyStatus(e.MessageID, e.Status)
			}
		}),
		v.channel.On(protocol.EventGroupMessageStatus, func(ev protocol.ServerEvent) {
			e, ok := ev.(*protocol.GroupMessageStatusUpdate)
			if ok && thread.Kind() == protocol.KindGroup && (e.GroupID == "" || e.GroupID == thread.RoomID()) {
				thread.ApplyStatus(e.MessageID, e.Status)
			}
		}),
		v.channel.On(protocol.EventShowTyping, func(ev protocol.ServerEvent) {
			e, ok := ev.(*protocol.ShowTyping)
			if ok && e.Room() == thread.Room() && e.UserID != v.self {
				thread.Typing(e.UserID, e.Username)
			}
		}),
		v.channel.On(protocol.EventMessageReacted, func(ev protocol.ServerEvent) {
			e, ok := ev.(*protocol.MessageReacted)
			if ok && e.Room() == thread.Room() {
				thread.ApplyReaction(e.MessageID, e.UserID, e.Emoji)
			}
		}),
		v.channel.On(protocol.EventUserOnlineStatus, func(ev protocol.ServerEvent) {
			if e, ok := ev.(*protocol.UserOnlineStatus); ok {
				thread.SetOnline(e.UserID, e.IsOnline)
			}
		}),
		v.channel.On(protocol.EventError, func(ev protocol.ServerEvent) {
			if e, ok := ev.(*protocol.ErrorEvent); ok {
				v.logger.Warn(fmt.Sprintf("realtime error %s: %s", e.Code, e.Message))
			}
		}),
	)
}

// acknowledgeSeen marks every loaded message from others that is not seen yet.
func (v *ChatView) acknowledgeSeen(ctx context.Context, thread *Thread) {
	for _, msg := range thread.Messages() {
		if msg.SenderID != v.self && msg.Status != protocol.StatusSeen {
			v.acknowledge(ctx, thread, msg.ID, true)
		}
	}
}

func (v *ChatView) acknowledge(ctx context.Context, thread *Thread, messageID string, seen bool) {
	var ev protocol.ClientEvent
	if thread.Kind() == protocol.KindGroup {
		ev = protocol.NewGroupMessageAck(messageID, thread.RoomID(), v.self, seen)
	} else {
		ev = protocol.NewMessageAck(messageID, thread.RoomID(), seen)
	}

	if err := v.channel.Emit(ctx, ev); err != nil {
		v.logger.Warn(fmt.Sprintf("failed to acknowledge %s: %v", messageID, err))
	}
}
