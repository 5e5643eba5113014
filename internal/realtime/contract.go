//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package realtime

import (
	"context"

	"github.com/s21platform/messenger-service/internal/model"
	"github.com/s21platform/messenger-service/pkg/protocol"
)

type DBRepo interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
	UpsertConversation(ctx context.Context, a, b string) (*model.Conversation, error)
	IsConversationParticipant(ctx context.Context, conversationID, userID string) (bool, error)
	GetConversationParticipantIDs(ctx context.Context, conversationID string) ([]string, error)
	GetConversationPeers(ctx context.Context, userID string) ([]string, error)
	IsGroupMember(ctx context.Context, groupID, userID string) (bool, error)
	GetMessage(ctx context.Context, messageID string) (*model.Message, error)
}

// Store receives the writes the persister replays in the background.
type Store interface {
	SaveMessage(ctx context.Context, message *model.Message) error
	UpdateMessageStatus(ctx context.Context, messageID string, status protocol.Status) (bool, error)
	UpsertReaction(ctx context.Context, reaction *model.Reaction) error
}

type TokenValidator interface {
	ValidateConnectToken(tokenString string) (*model.RealtimeConnectClaims, error)
}

// Presence counts live sessions per user. Connect reports whether this was the
// user's first session, Disconnect whether it was the last one. Refresh is
// called periodically while a session stays open.
type Presence interface {
	Connect(ctx context.Context, userID string) (bool, error)
	Disconnect(ctx context.Context, userID string) (bool, error)
	IsOnline(ctx context.Context, userID string) (bool, error)
	Refresh(ctx context.Context, userID string) error
}
