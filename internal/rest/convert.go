package rest

import (
	api "github.com/s21platform/messenger-service/internal/generated"
	"github.com/s21platform/messenger-service/internal/model"
	"github.com/s21platform/messenger-service/pkg/protocol"
)

func toAPIUser(user model.User) api.User {
	out := api.User{
		Id:        user.ID,
		Username:  user.Username,
		AvatarUrl: user.AvatarURL,
	}
	if user.Email != "" {
		email := user.Email
		out.Email = &email
	}
	return out
}

func toAPIGroup(group model.Group) api.Group {
	memberIDs := group.MemberIDs
	if memberIDs == nil {
		memberIDs = []string{}
	}
	return api.Group{
		Id:        group.ID,
		Name:      group.Name,
		AdminId:   group.AdminID,
		MemberIds: memberIDs,
		CreatedAt: group.CreatedAt,
		UpdatedAt: group.UpdatedAt,
	}
}

func toAPIMessage(msg protocol.Message) api.Message {
	out := api.Message{
		Id:        msg.ID,
		SenderId:  msg.SenderID,
		Content:   msg.Content,
		Status:    api.MessageStatus(msg.Status),
		CreatedAt: msg.CreatedAt,
	}
	if msg.ConversationID != "" {
		id := msg.ConversationID
		out.ConversationId = &id
	}
	if msg.GroupID != "" {
		id := msg.GroupID
		out.GroupId = &id
	}
	if msg.SenderName != "" {
		name := msg.SenderName
		out.SenderName = &name
	}
	if len(msg.Reactions) > 0 {
		reactions := make([]api.Reaction, len(msg.Reactions))
		for i, r := range msg.Reactions {
			reactions[i] = api.Reaction{UserId: r.UserID, Emoji: r.Emoji}
		}
		out.Reactions = &reactions
	}
	return out
}

// toAPIMessages never returns nil so an empty history encodes as [].
func toAPIMessages(messages model.MessageList) []api.Message {
	out := make([]api.Message, len(messages))
	for i := range messages {
		out[i] = toAPIMessage(messages[i].ToProtocol())
	}
	return out
}

// toAPIConversation reports the conversation as updated at its last message
// when that is newer than the row itself.
func toAPIConversation(preview model.ConversationPreview) api.Conversation {
	participants := make([]api.User, len(preview.Participants))
	for i, user := range preview.Participants {
		participants[i] = toAPIUser(user)
	}

	updatedAt := preview.UpdatedAt
	if preview.LastMessageAt != nil && preview.LastMessageAt.After(updatedAt) {
		updatedAt = *preview.LastMessageAt
	}

	return api.Conversation{
		Id:                preview.ID,
		Participants:      participants,
		LastMessage:       preview.LastMessage,
		LastMessageStatus: preview.LastMessageStatus,
		LastMessageAt:     preview.LastMessageAt,
		UnreadCount:       preview.UnreadCount,
		CreatedAt:         preview.CreatedAt,
		UpdatedAt:         updatedAt,
	}
}
