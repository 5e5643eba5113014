package model

type User struct {
	ID        string  `db:"id"`
	Username  string  `db:"username"`
	Email     string  `db:"email"`
	AvatarURL *string `db:"avatar_url"`
}

// UserProfileEvent is published by the user service whenever a profile is
// created or changed.
type UserProfileEvent struct {
	ID        string  `json:"id" validate:"required,uuid"`
	Username  string  `json:"username" validate:"required"`
	Email     string  `json:"email" validate:"omitempty,email"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

func (e *UserProfileEvent) ToUser() *User {
	return &User{
		ID:        e.ID,
		Username:  e.Username,
		Email:     e.Email,
		AvatarURL: e.AvatarURL,
	}
}
