package domain

import "time"

const DefaultPostType = "blog"

type Post struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Excerpt       string    `json:"excerpt"`
	CoverImageURL string    `json:"cover_image_url"`
	PostType      string    `json:"post_type"`
	Category      string    `json:"category"`
	Tags          []string  `json:"tags"`
	Published     bool      `json:"published"`
	Views         int64     `json:"views"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Author
	LikesCount    int64 `json:"likes_count"`
	CommentsCount int64 `json:"comments_count"`
}

type NewPost struct {
	UserID        int64
	Title         string
	Content       string
	Excerpt       string
	CoverImageURL string
	PostType      string
	Category      string
	Tags          []string
	Published     bool
}

type CreatedPost struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type PostFilter struct {
	PostType string
	UserID   int64
	Limit    int
}
