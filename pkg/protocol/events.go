package protocol

import (
	"errors"
	"strings"
)

// Client -> server event names. The spellings are part of the wire contract
// shared with the web frontend.
const (
	EventJoinConversation       = "joinConversation"
	EventJoinGroup              = "joinGroup"
	EventSendMessage            = "sendMessage"
	EventSendGroupMessage       = "sendGroupMessage"
	EventMarkMessageAsDelivered = "markMessageAsDelivered"
	EventMarkMessageAsSeen      = "markMessageAsSeen"
	EventGroupMessageReceived   = "Group-message-recieved"
	EventGroupMessageSeen       = "Group-message-seen"
	EventUserTyping             = "user-typing"
	EventReactMessage           = "reactMessage"
)

// Server -> client event names.
const (
	EventNewMessage         = "newMessage"
	EventNewGroupMessage    = "newGroupMessage"
	EventMessageStatus      = "message-status-update"
	EventGroupMessageStatus = "GroupId-message-status-update"
	EventShowTyping         = "show-typing"
	EventMessageReacted     = "messageReacted"
	EventUserOnlineStatus   = "user-online-status"
	EventError              = "error"
)

// Error codes carried by EventError.
const (
	ErrCodeInvalidEvent = "invalid_event"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeRateLimited  = "rate_limited"
	ErrCodeInternal     = "internal_error"
)

var errRoomTarget = errors.New("exactly one of conversationId and groupId is required")

// ClientEvent is one decoded and validated client -> server event.
type ClientEvent interface {
	EventName() string
}

// ServerEvent is one decoded server -> client event.
type ServerEvent interface {
	EventName() string
}

type JoinConversation struct {
	ConversationID string `json:"conversationId" validate:"required,uuid"`
}

type JoinGroup struct {
	GroupID string `json:"groupId" validate:"required,uuid"`
}

type SendMessage struct {
	SenderID       string `json:"senderId" validate:"required"`
	RecipientID    string `json:"recipientId"`
	ConversationID string `json:"conversationId,omitempty" validate:"omitempty,uuid"`
	Content        string `json:"content" validate:"required"`
}

func (e *SendMessage) validate() error {
	if e.ConversationID == "" && e.RecipientID == "" {
		return errors.New("recipientId or conversationId is required")
	}
	if strings.TrimSpace(e.Content) == "" {
		return errors.New("content cannot be empty")
	}
	return nil
}

type SendGroupMessage struct {
	SenderID   string `json:"senderId" validate:"required"`
	SenderName string `json:"senderName,omitempty"`
	GroupID    string `json:"groupId" validate:"required,uuid"`
	Content    string `json:"content" validate:"required"`
}

func (e *SendGroupMessage) validate() error {
	if strings.TrimSpace(e.Content) == "" {
		return errors.New("content cannot be empty")
	}
	return nil
}

// MessageAck acknowledges a direct message, either as received or as seen.
type MessageAck struct {
	MessageID      string `json:"messageId" validate:"required,uuid"`
	ConversationID string `json:"conversationId" validate:"required,uuid"`

	seen bool
}

func (e *MessageAck) Seen() bool { return e.seen }

// GroupMessageAck acknowledges a group message, either as received or as seen.
type GroupMessageAck struct {
	MessageID string `json:"messageId" validate:"required,uuid"`
	GroupID   string `json:"groupId" validate:"required,uuid"`
	UserID    string `json:"userId"`

	seen bool
}

func (e *GroupMessageAck) Seen() bool { return e.seen }

type UserTyping struct {
	ConversationID string `json:"conversationId,omitempty" validate:"omitempty,uuid"`
	GroupID        string `json:"groupId,omitempty" validate:"omitempty,uuid"`
	UserID         string `json:"userId" validate:"required"`
	Username       string `json:"username"`
}

func (e *UserTyping) validate() error {
	return exactlyOneRoom(e.ConversationID, e.GroupID)
}

func (e *UserTyping) Room() string {
	return roomOf(e.ConversationID, e.GroupID)
}

type ReactMessage struct {
	MessageID      string `json:"messageId" validate:"required,uuid"`
	UserID         string `json:"userId" validate:"required"`
	Emoji          string `json:"emoji" validate:"required,max=16"`
	ConversationID string `json:"conversationId,omitempty" validate:"omitempty,uuid"`
	GroupID        string `json:"groupId,omitempty" validate:"omitempty,uuid"`
}

func (e *ReactMessage) validate() error {
	return exactlyOneRoom(e.ConversationID, e.GroupID)
}

func (e *ReactMessage) Room() string {
	return roomOf(e.ConversationID, e.GroupID)
}

func (*JoinConversation) EventName() string { return EventJoinConversation }
func (*JoinGroup) EventName() string        { return EventJoinGroup }
func (*SendMessage) EventName() string      { return EventSendMessage }
func (*SendGroupMessage) EventName() string { return EventSendGroupMessage }
func (*UserTyping) EventName() string       { return EventUserTyping }
func (*ReactMessage) EventName() string     { return EventReactMessage }

func (e *MessageAck) EventName() string {
	if e.seen {
		return EventMarkMessageAsSeen
	}
	return EventMarkMessageAsDelivered
}

func (e *GroupMessageAck) EventName() string {
	if e.seen {
		return EventGroupMessageSeen
	}
	return EventGroupMessageReceived
}

// NewMessageAck builds the direct ack payload for emitting.
func NewMessageAck(messageID, conversationID string, seen bool) *MessageAck {
	return &MessageAck{MessageID: messageID, ConversationID: conversationID, seen: seen}
}

// NewGroupMessageAck builds the group ack payload for emitting.
func NewGroupMessageAck(messageID, groupID, userID string, seen bool) *GroupMessageAck {
	return &GroupMessageAck{MessageID: messageID, GroupID: groupID, UserID: userID, seen: seen}
}

type NewMessage struct {
	Message
}

type NewGroupMessage struct {
	Message
}

type MessageStatusUpdate struct {
	MessageID      string `json:"messageId"`
	ConversationID string `json:"conversationId,omitempty"`
	Status         Status `json:"status"`
}

type GroupMessageStatusUpdate struct {
	MessageID string `json:"messageId"`
	GroupID   string `json:"groupId,omitempty"`
	Status    Status `json:"status"`
}

type ShowTyping struct {
	UserID         string `json:"userId"`
	Username       string `json:"username"`
	ConversationID string `json:"conversationId,omitempty"`
	GroupID        string `json:"groupId,omitempty"`
}

func (e *ShowTyping) Room() string {
	return roomOf(e.ConversationID, e.GroupID)
}

type MessageReacted struct {
	MessageID      string `json:"messageId"`
	UserID         string `json:"userId"`
	Emoji          string `json:"emoji"`
	ConversationID string `json:"conversationId,omitempty"`
	GroupID        string `json:"groupId,omitempty"`
}

func (e *MessageReacted) Room() string {
	return roomOf(e.ConversationID, e.GroupID)
}

type UserOnlineStatus struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (*NewMessage) EventName() string               { return EventNewMessage }
func (*NewGroupMessage) EventName() string          { return EventNewGroupMessage }
func (*MessageStatusUpdate) EventName() string      { return EventMessageStatus }
func (*GroupMessageStatusUpdate) EventName() string { return EventGroupMessageStatus }
func (*ShowTyping) EventName() string               { return EventShowTyping }
func (*MessageReacted) EventName() string           { return EventMessageReacted }
func (*UserOnlineStatus) EventName() string         { return EventUserOnlineStatus }
func (*ErrorEvent) EventName() string               { return EventError }

func exactlyOneRoom(conversationID, groupID string) error {
	if (conversationID == "") == (groupID == "") {
		return errRoomTarget
	}
	return nil
}

func roomOf(conversationID, groupID string) string {
	if groupID != "" {
		return RoomKey(KindGroup, groupID)
	}
	return RoomKey(KindDirect, conversationID)
}
