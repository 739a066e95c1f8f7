package domain

import "time"

type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	FullName     string    `db:"full_name" json:"full_name"`
	Bio          *string   `db:"bio" json:"bio"`
	AvatarURL    *string   `db:"avatar_url" json:"avatar_url"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"-"`
}

type NewUser struct {
	Email        string
	Username     string
	PasswordHash string
	FullName     string
}

// ProfileUpdate carries the optional profile fields; nil means unchanged.
type ProfileUpdate struct {
	FullName  *string
	Bio       *string
	AvatarURL *string
}

func (p ProfileUpdate) IsEmpty() bool {
	return p.FullName == nil && p.Bio == nil && p.AvatarURL == nil
}

type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
