package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/s21platform/messenger-service/internal/model"
)

func (r *Repository) CreateGroup(ctx context.Context, name, adminID string) (*model.Group, error) {
	query, args, err := psql().Insert("groups").
		Columns("id", "name", "admin_id").
		Values(uuid.NewString(), name, adminID).
		Suffix("RETURNING id, name, admin_id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var group model.Group
	err = r.Chk(ctx).GetContext(ctx, &group, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %v", err)
	}

	return &group, nil
}

func (r *Repository) GetGroup(ctx context.Context, groupID string) (*model.Group, error) {
	query, args, err := psql().Select("id", "name", "admin_id", "created_at", "updated_at").
		From("groups").
		Where(sq.Eq{"id": groupID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var group model.Group
	err = r.Chk(ctx).GetContext(ctx, &group, query, args...)
	if err != nil {
		return nil, notFound(err)
	}

	return &group, nil
}

func (r *Repository) AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	queryBuilder := psql().Insert("group_members").Columns("group_id", "user_id")
	for _, userID := range userIDs {
		queryBuilder = queryBuilder.Values(groupID, userID)
	}

	query, args, err := queryBuilder.Suffix("ON CONFLICT (group_id, user_id) DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.Chk(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to add group members: %v", err)
	}

	return nil
}

// RemoveGroupMember reports whether userID was a member.
func (r *Repository) RemoveGroupMember(ctx context.Context, groupID, userID string) (bool, error) {
	query, args, err := psql().Delete("group_members").
		Where(sq.Eq{"group_id": groupID, "user_id": userID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build sql query: %v", err)
	}

	res, err := r.Chk(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to remove group member: %v", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %v", err)
	}

	return affected > 0, nil
}

func (r *Repository) IsGroupMember(ctx context.Context, groupID, userID string) (bool, error) {
	query, args, err := psql().
		Select("COUNT(*) > 0").
		From("group_members").
		Where(sq.Eq{"group_id": groupID, "user_id": userID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build sql query: %v", err)
	}

	var isMember bool
	err = r.Chk(ctx).GetContext(ctx, &isMember, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check group membership: %v", err)
	}

	return isMember, nil
}

func (r *Repository) GetGroupMembers(ctx context.Context, groupID string) ([]model.User, error) {
	query, args, err := psql().Select("u.id", "u.username", "u.email", "u.avatar_url").
		From("group_members gm").
		Join("users u ON u.id = gm.user_id").
		Where(sq.Eq{"gm.group_id": groupID}).
		OrderBy("u.username").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	members := []model.User{}
	err = r.Chk(ctx).SelectContext(ctx, &members, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %v", err)
	}

	return members, nil
}

func (r *Repository) GetUserGroups(ctx context.Context, userID string) ([]model.Group, error) {
	query, args, err := psql().Select("g.id", "g.name", "g.admin_id", "g.created_at", "g.updated_at").
		From("groups g").
		Join("group_members gm ON gm.group_id = g.id").
		Where(sq.Eq{"gm.user_id": userID}).
		OrderBy("g.updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	groups := []model.Group{}
	err = r.Chk(ctx).SelectContext(ctx, &groups, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get user groups: %v", err)
	}

	if len(groups) == 0 {
		return groups, nil
	}

	ids := make([]string, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}

	query, args, err = psql().Select("group_id", "user_id").
		From("group_members").
		Where(sq.Eq{"group_id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var members []model.GroupMember
	err = r.Chk(ctx).SelectContext(ctx, &members, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %v", err)
	}

	byGroup := make(map[string][]string, len(groups))
	for _, m := range members {
		byGroup[m.GroupID] = append(byGroup[m.GroupID], m.UserID)
	}
	for i := range groups {
		groups[i].MemberIDs = byGroup[groups[i].ID]
	}

	return groups, nil
}

func (r *Repository) GetGroupMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	query, args, err := psql().Select("user_id").
		From("group_members").
		Where(sq.Eq{"group_id": groupID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var userIDs []string
	err = r.Chk(ctx).SelectContext(ctx, &userIDs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get group member ids: %v", err)
	}

	return userIDs, nil
}
