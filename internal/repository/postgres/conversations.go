package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/s21platform/messenger-service/internal/model"
)

// UpsertConversation returns the conversation of the unordered pair {a, b},
// creating it when missing. Concurrent first contact from both sides lands on
// the unique pair_key and converges on one row.
func (r *Repository) UpsertConversation(ctx context.Context, a, b string) (*model.Conversation, error) {
	query, args, err := psql().Insert("conversations").
		Columns("id", "pair_key").
		Values(uuid.NewString(), model.PairKey(a, b)).
		Suffix("ON CONFLICT (pair_key) DO UPDATE SET pair_key = EXCLUDED.pair_key RETURNING id, pair_key, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var conversation model.Conversation
	err = r.Chk(ctx).GetContext(ctx, &conversation, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert conversation: %v", err)
	}

	query, args, err = psql().Insert("conversation_participants").
		Columns("conversation_id", "user_id").
		Values(conversation.ID, a).
		Values(conversation.ID, b).
		Suffix("ON CONFLICT (conversation_id, user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.Chk(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to add conversation participants: %v", err)
	}

	return &conversation, nil
}

func (r *Repository) IsConversationParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	query, args, err := psql().
		Select("COUNT(*) > 0").
		From("conversation_participants").
		Where(sq.And{
			sq.Eq{"conversation_id": conversationID},
			sq.Eq{"user_id": userID},
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build sql query: %v", err)
	}

	var isParticipant bool
	err = r.Chk(ctx).GetContext(ctx, &isParticipant, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check conversation participant: %v", err)
	}

	return isParticipant, nil
}

func (r *Repository) GetConversationParticipantIDs(ctx context.Context, conversationID string) ([]string, error) {
	query, args, err := psql().Select("user_id").
		From("conversation_participants").
		Where(sq.Eq{"conversation_id": conversationID}).
		OrderBy("user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var userIDs []string
	err = r.Chk(ctx).SelectContext(ctx, &userIDs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation participants: %v", err)
	}

	return userIDs, nil
}

// GetConversationPeers lists every user sharing a direct conversation with userID.
func (r *Repository) GetConversationPeers(ctx context.Context, userID string) ([]string, error) {
	query, args, err := psql().Select("DISTINCT cp2.user_id").
		From("conversation_participants cp1").
		Join("conversation_participants cp2 ON cp1.conversation_id = cp2.conversation_id").
		Where(sq.And{
			sq.Eq{"cp1.user_id": userID},
			sq.NotEq{"cp2.user_id": userID},
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var peers []string
	err = r.Chk(ctx).SelectContext(ctx, &peers, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation peers: %v", err)
	}

	return peers, nil
}

// GetConversations lists the conversations of userID, most recently active
// first. unread_count counts messages from the other side not yet seen.
func (r *Repository) GetConversations(ctx context.Context, userID string) (model.ConversationPreviewList, error) {
	lastMessage := func(column string) string {
		sql, _, _ := sq.Select(column).
			From("messages m2").
			Where("m2.conversation_id = c.id").
			OrderBy("m2.created_at DESC").
			Limit(1).ToSql()
		return "(" + sql + ")"
	}

	query, args, err := psql().Select(
		"c.id",
		"c.created_at",
		"c.updated_at",
		lastMessage("content")+" AS last_message",
		lastMessage("status")+" AS last_message_status",
		lastMessage("created_at")+" AS last_message_at",
	).
		Column(sq.Expr(
			"(SELECT COUNT(*) FROM messages m3 WHERE m3.conversation_id = c.id AND m3.sender_id <> ? AND m3.status <> 'seen') AS unread_count",
			userID,
		)).
		From("conversations c").
		Join("conversation_participants cp ON c.id = cp.conversation_id").
		Where(sq.Eq{"cp.user_id": userID}).
		OrderBy("COALESCE(" + lastMessage("created_at") + ", c.created_at) DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	conversations := model.ConversationPreviewList{}
	err = r.Chk(ctx).SelectContext(ctx, &conversations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversations: %v", err)
	}

	if len(conversations) == 0 {
		return conversations, nil
	}

	ids := make([]string, len(conversations))
	for i, c := range conversations {
		ids[i] = c.ID
	}

	query, args, err = psql().Select(
		"cp.conversation_id",
		"u.id",
		"u.username",
		"u.email",
		"u.avatar_url",
	).
		From("conversation_participants cp").
		Join("users u ON u.id = cp.user_id").
		Where(sq.Eq{"cp.conversation_id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var participants []model.Participant
	err = r.Chk(ctx).SelectContext(ctx, &participants, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %v", err)
	}

	byConversation := make(map[string][]model.User, len(conversations))
	for _, p := range participants {
		byConversation[p.ConversationID] = append(byConversation[p.ConversationID], p.User)
	}
	for i := range conversations {
		conversations[i].Participants = byConversation[conversations[i].ID]
	}

	return conversations, nil
}
