package domain

import "time"

// Story is an ephemeral post. It stays visible until ExpiresAt and is never
// deleted; expiring a story only moves ExpiresAt back to the moment of expiry.
type Story struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ImageURL  string    `db:"image_url" json:"image_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}

// VisibleAt reports whether the story is still active at t.
func (s Story) VisibleAt(t time.Time) bool {
	return s.ExpiresAt.After(t)
}

// StoryView records the first time a viewer opened a story.
type StoryView struct {
	ID       int64     `db:"id" json:"-"`
	StoryID  int64     `db:"story_id" json:"-"`
	ViewerID int64     `db:"viewer_id" json:"viewer_id"`
	ViewedAt time.Time `db:"viewed_at" json:"viewed_at"`
}

type Author struct {
	Username  string  `db:"username" json:"username"`
	FullName  string  `db:"full_name" json:"full_name"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url"`
}

type AuthoredStory struct {
	Story
	Author
}

// StoryDetail is one entry of an author's story list.
type StoryDetail struct {
	AuthoredStory
	Views []StoryView `db:"-" json:"views"`
}

// FeedEntry is the latest active story of one author.
type FeedEntry struct {
	AuthoredStory
	StoryCount int64 `db:"story_count" json:"story_count"`
	ViewCount  int64 `db:"view_count" json:"view_count"`
}
