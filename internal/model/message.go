package model

import (
	"time"

	"github.com/s21platform/messenger-service/pkg/protocol"
)

type MessageList []Message

type Message struct {
	ID             string          `db:"id"`
	ConversationID *string         `db:"conversation_id"`
	GroupID        *string         `db:"group_id"`
	SenderID       string          `db:"sender_id"`
	SenderName     *string         `db:"sender_name"`
	Content        string          `db:"content"`
	Status         protocol.Status `db:"status"`
	CreatedAt      time.Time       `db:"created_at"`

	Reactions []Reaction `db:"-"`
}

type Reaction struct {
	MessageID string    `db:"message_id"`
	UserID    string    `db:"user_id"`
	Emoji     string    `db:"emoji"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (m *Message) ToProtocol() protocol.Message {
	out := protocol.Message{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		Status:    m.Status,
	}
	if m.ConversationID != nil {
		out.ConversationID = *m.ConversationID
	}
	if m.GroupID != nil {
		out.GroupID = *m.GroupID
	}
	if m.SenderName != nil {
		out.SenderName = *m.SenderName
	}
	for _, r := range m.Reactions {
		out.Reactions = append(out.Reactions, protocol.Reaction{UserID: r.UserID, Emoji: r.Emoji})
	}
	return out
}

func MessageFromProtocol(msg protocol.Message) *Message {
	out := &Message{
		ID:        msg.ID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		Status:    msg.Status,
		CreatedAt: msg.CreatedAt,
	}
	if msg.ConversationID != "" {
		id := msg.ConversationID
		out.ConversationID = &id
	}
	if msg.GroupID != "" {
		id := msg.GroupID
		out.GroupID = &id
	}
	if msg.SenderName != "" {
		name := msg.SenderName
		out.SenderName = &name
	}
	return out
}
