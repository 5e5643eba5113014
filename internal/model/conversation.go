package model

import (
	"time"
)

type Conversation struct {
	ID        string    `db:"id"`
	PairKey   string    `db:"pair_key"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type ConversationPreviewList []ConversationPreview

type ConversationPreview struct {
	ID                string     `db:"id"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
	LastMessage       *string    `db:"last_message"`
	LastMessageStatus *string    `db:"last_message_status"`
	LastMessageAt     *time.Time `db:"last_message_at"`
	UnreadCount       int        `db:"unread_count"`

	Participants []User `db:"-"`
}

type Participant struct {
	ConversationID string `db:"conversation_id"`
	User
}

// PairKey is the storage key of the unordered pair {a, b}; it is the same
// for (a, b) and (b, a).
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}
