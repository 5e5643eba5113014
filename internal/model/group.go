package model

import "time"

type Group struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	AdminID   string    `db:"admin_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	MemberIDs []string `db:"-"`
}

type GroupMember struct {
	GroupID string `db:"group_id"`
	UserID  string `db:"user_id"`
}
