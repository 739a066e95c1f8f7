package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"social_blog/internal/domain"
)

type StoryViewStore struct {
	db *sqlx.DB
}

func NewStoryViewStore(db *sqlx.DB) *StoryViewStore {
	return &StoryViewStore{db: db}
}

// Record stores the first view of a story by a viewer. Repeat views are
// absorbed by the unique (story_id, viewer_id) constraint.
func (s *StoryViewStore) Record(ctx context.Context, storyID, viewerID int64, viewedAt time.Time) error {
	query := `
		INSERT INTO story_views (story_id, viewer_id, viewed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (story_id, viewer_id) DO NOTHING`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, storyID, viewerID, viewedAt)
	return err
}

func (s *StoryViewStore) ListByStoryIDs(ctx context.Context, storyIDs []int64) ([]domain.StoryView, error) {
	if len(storyIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, story_id, viewer_id, viewed_at
		FROM story_views
		WHERE story_id = ANY($1)
		ORDER BY viewed_at, id`

	var views []domain.StoryView
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &views, query, pq.Array(storyIDs))
	return views, err
}
