package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/s21platform/messenger-service/internal/model"
)

func (r *Repository) UpsertUser(ctx context.Context, user *model.User) error {
	query, args, err := psql().Insert("users").
		Columns("id", "username", "email", "avatar_url").
		Values(user.ID, user.Username, user.Email, user.AvatarURL).
		Suffix("ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, email = EXCLUDED.email, avatar_url = EXCLUDED.avatar_url").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.Chk(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %v", err)
	}

	return nil
}

func (r *Repository) GetUser(ctx context.Context, userID string) (*model.User, error) {
	query, args, err := psql().Select("id", "username", "email", "avatar_url").
		From("users").
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var user model.User
	err = r.Chk(ctx).GetContext(ctx, &user, query, args...)
	if err != nil {
		return nil, notFound(err)
	}

	return &user, nil
}

func (r *Repository) CountUsers(ctx context.Context, userIDs []string) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	query, args, err := psql().Select("COUNT(*)").
		From("users").
		Where(sq.Eq{"id": userIDs}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build sql query: %v", err)
	}

	var count int
	err = r.Chk(ctx).GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %v", err)
	}

	return count, nil
}

func (r *Repository) SearchUsers(ctx context.Context, search string, limit uint64) ([]model.User, error) {
	pattern := "%" + search + "%"
	query, args, err := psql().Select("id", "username", "email", "avatar_url").
		From("users").
		Where(sq.Or{
			sq.ILike{"username": pattern},
			sq.ILike{"email": pattern},
		}).
		OrderBy("username").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	users := []model.User{}
	err = r.Chk(ctx).SelectContext(ctx, &users, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %v", err)
	}

	return users, nil
}
