//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package rest

import (
	"context"
	"time"

	api "github.com/s21platform/messenger-service/internal/generated"
	"github.com/s21platform/messenger-service/internal/model"
	"github.com/s21platform/messenger-service/pkg/protocol"
)

type DBRepo interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
	CountUsers(ctx context.Context, userIDs []string) (int, error)
	SearchUsers(ctx context.Context, search string, limit uint64) ([]model.User, error)

	UpsertConversation(ctx context.Context, a, b string) (*model.Conversation, error)
	GetConversations(ctx context.Context, userID string) (model.ConversationPreviewList, error)
	IsConversationParticipant(ctx context.Context, conversationID, userID string) (bool, error)

	SaveMessage(ctx context.Context, message *model.Message) error
	GetConversationMessages(ctx context.Context, conversationID string, before *time.Time, limit uint64) (model.MessageList, error)
	GetGroupMessages(ctx context.Context, groupID string, before *time.Time, limit uint64) (model.MessageList, error)

	CreateGroup(ctx context.Context, name, adminID string) (*model.Group, error)
	GetGroup(ctx context.Context, groupID string) (*model.Group, error)
	AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error
	RemoveGroupMember(ctx context.Context, groupID, userID string) (bool, error)
	IsGroupMember(ctx context.Context, groupID, userID string) (bool, error)
	GetGroupMembers(ctx context.Context, groupID string) ([]model.User, error)
	GetGroupMemberIDs(ctx context.Context, groupID string) ([]string, error)
	GetUserGroups(ctx context.Context, userID string) ([]model.Group, error)

	WithTx(ctx context.Context, cb func(ctx context.Context) error) error
}

// Broadcaster keeps live sessions in step with changes made over REST.
type Broadcaster interface {
	PublishMessage(ctx context.Context, msg protocol.Message)
	RemoveFromGroup(ctx context.Context, userID, groupID string)
}

type Validator interface {
	ValidateCreateConversation(req *api.CreateConversationRequest, callerID string) error
	ValidateSendMessage(req *api.SendMessageRequest, callerID string) error
	ValidateCreateGroup(req *api.CreateGroupRequest, callerID string) error
	ValidateGroupMembership(req *api.GroupMembershipRequest, callerID string) error
}

type JWTGenerator interface {
	GenerateConnectToken(userID, username string) (string, int64, error)
}
