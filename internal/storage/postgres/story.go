package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"social_blog/internal/domain"
)

// storyVisible is the single definition of an active story. Every read that
// exposes stories binds the reference time as $1.
const storyVisible = "s.expires_at > $1"

const authoredStoryColumns = `
	s.id, s.user_id, s.image_url, s.created_at, s.expires_at,
	u.username, u.full_name, u.avatar_url`

type StoryStore struct {
	db *sqlx.DB
}

func NewStoryStore(db *sqlx.DB) *StoryStore {
	return &StoryStore{db: db}
}

func (s *StoryStore) Create(ctx context.Context, userID int64, imageURL string, createdAt, expiresAt time.Time) (*domain.Story, error) {
	query := `
		INSERT INTO stories (user_id, image_url, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, image_url, created_at, expires_at`

	var story domain.Story
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &story, query, userID, imageURL, createdAt, expiresAt)
	if err != nil {
		return nil, err
	}
	return &story, nil
}

// ListVisibleByUser returns the author's active stories, newest first.
func (s *StoryStore) ListVisibleByUser(ctx context.Context, userID int64, now time.Time) ([]domain.AuthoredStory, error) {
	query := `
		SELECT` + authoredStoryColumns + `
		FROM stories s
		JOIN users u ON u.id = s.user_id
		WHERE ` + storyVisible + ` AND s.user_id = $2
		ORDER BY s.created_at DESC, s.id DESC`

	stories := []domain.AuthoredStory{}
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &stories, query, now, userID)
	return stories, err
}

// ListFeed returns the latest active story of every author that has one,
// ordered by that story's creation time, newest first.
func (s *StoryStore) ListFeed(ctx context.Context, now time.Time) ([]domain.FeedEntry, error) {
	query := `
		SELECT f.* FROM (
			SELECT DISTINCT ON (s.user_id)` + authoredStoryColumns + `,
				COUNT(*) OVER (PARTITION BY s.user_id) AS story_count,
				(SELECT COUNT(*) FROM story_views v WHERE v.story_id = s.id) AS view_count
			FROM stories s
			JOIN users u ON u.id = s.user_id
			WHERE ` + storyVisible + `
			ORDER BY s.user_id, s.created_at DESC, s.id DESC
		) f
		ORDER BY f.created_at DESC, f.id DESC`

	entries := []domain.FeedEntry{}
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &entries, query, now)
	return entries, err
}

// LockOwner returns the story's author and holds a row lock on the story until
// the surrounding transaction ends.
func (s *StoryStore) LockOwner(ctx context.Context, storyID int64) (int64, error) {
	var userID int64
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &userID,
		"SELECT user_id FROM stories WHERE id = $1 FOR UPDATE", storyID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrStoryNotFound
	}
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// Expire moves expires_at back to at. A story that already expired earlier
// keeps its original expiry.
func (s *StoryStore) Expire(ctx context.Context, storyID int64, at time.Time) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		"UPDATE stories SET expires_at = LEAST(expires_at, $2) WHERE id = $1",
		storyID, at,
	)
	return err
}
