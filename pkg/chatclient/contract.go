//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package chatclient

import (
	"context"

	"github.com/s21platform/messenger-service/pkg/protocol"
)

// ConversationAPI is what the Resolver needs from the REST API.
type ConversationAPI interface {
	Conversations(ctx context.Context) ([]Conversation, error)
	CreateConversation(ctx context.Context, peerID string) (*Conversation, error)
	GroupMembers(ctx context.Context, groupID string) ([]protocol.User, error)
}

// HistoryAPI is what the Store needs from the REST API.
type HistoryAPI interface {
	Messages(ctx context.Context, conversationID string) ([]protocol.Message, error)
	GroupMessages(ctx context.Context, groupID string) ([]protocol.Message, error)
	SendMessage(ctx context.Context, req SendMessageRequest) (*protocol.Message, error)
}

// Channel is the realtime session as seen by a ChatView. On returns the
// unsubscribe function of the handler.
type Channel interface {
	Emit(ctx context.Context, ev protocol.ClientEvent) error
	On(event string, handler Handler) func()
	Connected() bool
}
