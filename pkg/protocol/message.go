package protocol

import (
	"sort"
	"time"
)

// Kind tells a direct conversation apart from a group. Messages do not carry
// it themselves, it comes from which id is set.
type Kind string

const (
	KindDirect Kind = "dm"
	KindGroup  Kind = "group"
)

func RoomKey(kind Kind, id string) string {
	return string(kind) + ":" + id
}

type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	IsOnline  bool   `json:"isOnline,omitempty"`
}

type Reaction struct {
	UserID string `json:"userId"`
	Emoji  string `json:"emoji"`
}

type Message struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversationId,omitempty"`
	GroupID        string     `json:"groupId,omitempty"`
	SenderID       string     `json:"senderId"`
	SenderName     string     `json:"senderName,omitempty"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"createdAt"`
	Status         Status     `json:"status"`
	Reactions      []Reaction `json:"reactions,omitempty"`
}

func (m Message) Kind() Kind {
	if m.GroupID != "" {
		return KindGroup
	}
	return KindDirect
}

func (m Message) RoomID() string {
	if m.GroupID != "" {
		return m.GroupID
	}
	return m.ConversationID
}

func (m Message) Room() string {
	return RoomKey(m.Kind(), m.RoomID())
}

// Before orders messages by creation time, ties broken by id so the order is
// total and stable across clients.
func Before(a, b Message) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return Before(msgs[i], msgs[j])
	})
}

// SetReaction replaces userID's previous reaction, if any.
func SetReaction(reactions []Reaction, userID, emoji string) []Reaction {
	out := make([]Reaction, 0, len(reactions)+1)
	for _, r := range reactions {
		if r.UserID != userID {
			out = append(out, r)
		}
	}
	return append(out, Reaction{UserID: userID, Emoji: emoji})
}
