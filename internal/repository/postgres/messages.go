package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/s21platform/messenger-service/internal/model"
	"github.com/s21platform/messenger-service/pkg/protocol"
)

const statusRankExpr = "(CASE status WHEN 'sent' THEN 1 WHEN 'delivered' THEN 2 WHEN 'seen' THEN 3 ELSE 0 END)"

var messageColumns = []string{
	"id",
	"conversation_id",
	"group_id",
	"sender_id",
	"sender_name",
	"content",
	"status",
	"created_at",
}

func (r *Repository) SaveMessage(ctx context.Context, message *model.Message) error {
	query, args, err := psql().Insert("messages").
		Columns(messageColumns...).
		Values(
			message.ID,
			message.ConversationID,
			message.GroupID,
			message.SenderID,
			message.SenderName,
			message.Content,
			message.Status,
			message.CreatedAt,
		).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.Chk(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save message: %v", err)
	}

	if message.ConversationID != nil {
		err = r.touch(ctx, "conversations", *message.ConversationID, message.CreatedAt)
	} else if message.GroupID != nil {
		err = r.touch(ctx, "groups", *message.GroupID, message.CreatedAt)
	}

	return err
}

func (r *Repository) touch(ctx context.Context, table, id string, at time.Time) error {
	query, args, err := psql().Update(table).
		Set("updated_at", at).
		Where(sq.Eq{"id": id}).
		Where(sq.Lt{"updated_at": at}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.Chk(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to touch %s: %v", table, err)
	}

	return nil
}

// UpdateMessageStatus moves a message forward only; it reports false when the
// stored status is already at or past status.
func (r *Repository) UpdateMessageStatus(ctx context.Context, messageID string, status protocol.Status) (bool, error) {
	query, args, err := psql().Update("messages").
		Set("status", status).
		Where(sq.Eq{"id": messageID}).
		Where(sq.Expr(statusRankExpr+" < ?", protocol.Rank(status))).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build sql query: %v", err)
	}

	res, err := r.Chk(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update message status: %v", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %v", err)
	}

	return affected > 0, nil
}

func (r *Repository) GetMessage(ctx context.Context, messageID string) (*model.Message, error) {
	query, args, err := psql().Select(messageColumns...).
		From("messages").
		Where(sq.Eq{"id": messageID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var message model.Message
	err = r.Chk(ctx).GetContext(ctx, &message, query, args...)
	if err != nil {
		return nil, notFound(err)
	}

	return &message, nil
}

func (r *Repository) GetConversationMessages(ctx context.Context, conversationID string, before *time.Time, limit uint64) (model.MessageList, error) {
	return r.getMessages(ctx, sq.Eq{"conversation_id": conversationID}, before, limit)
}

func (r *Repository) GetGroupMessages(ctx context.Context, groupID string, before *time.Time, limit uint64) (model.MessageList, error) {
	return r.getMessages(ctx, sq.Eq{"group_id": groupID}, before, limit)
}

// getMessages pages backwards from before and returns the page ascending by
// creation time.
func (r *Repository) getMessages(ctx context.Context, scope sq.Eq, before *time.Time, limit uint64) (model.MessageList, error) {
	queryBuilder := psql().Select(messageColumns...).
		From("messages").
		Where(scope).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit)

	if before != nil {
		queryBuilder = queryBuilder.Where(sq.Lt{"created_at": *before})
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	messages := model.MessageList{}
	err = r.Chk(ctx).SelectContext(ctx, &messages, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %v", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	if err := r.attachReactions(ctx, messages); err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *Repository) attachReactions(ctx context.Context, messages model.MessageList) error {
	if len(messages) == 0 {
		return nil
	}

	ids := make([]string, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}

	query, args, err := psql().Select("message_id", "user_id", "emoji", "updated_at").
		From("message_reactions").
		Where(sq.Eq{"message_id": ids}).
		OrderBy("updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	var reactions []model.Reaction
	err = r.Chk(ctx).SelectContext(ctx, &reactions, query, args...)
	if err != nil {
		return fmt.Errorf("failed to get reactions: %v", err)
	}

	byMessage := make(map[string][]model.Reaction, len(messages))
	for _, reaction := range reactions {
		byMessage[reaction.MessageID] = append(byMessage[reaction.MessageID], reaction)
	}
	for i := range messages {
		messages[i].Reactions = byMessage[messages[i].ID]
	}

	return nil
}

// UpsertReaction keeps one reaction per (message, user); a new emoji replaces the old one.
func (r *Repository) UpsertReaction(ctx context.Context, reaction *model.Reaction) error {
	query, args, err := psql().Insert("message_reactions").
		Columns("message_id", "user_id", "emoji", "updated_at").
		Values(reaction.MessageID, reaction.UserID, reaction.Emoji, reaction.UpdatedAt).
		Suffix("ON CONFLICT (message_id, user_id) DO UPDATE SET emoji = EXCLUDED.emoji, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.Chk(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert reaction: %v", err)
	}

	return nil
}
