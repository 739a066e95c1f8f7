package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"social_blog/internal/domain"
)

const postSelect = `
	SELECT p.id, p.user_id, p.title, p.content, p.excerpt, p.cover_image_url,
		p.post_type, p.category, p.tags, p.published, p.views, p.created_at, p.updated_at,
		u.username, u.full_name, u.avatar_url,
		(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS likes_count,
		(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comments_count
	FROM posts p
	JOIN users u ON u.id = p.user_id`

type postRow struct {
	ID            int64          `db:"id"`
	UserID        int64          `db:"user_id"`
	Title         string         `db:"title"`
	Content       string         `db:"content"`
	Excerpt       string         `db:"excerpt"`
	CoverImageURL string         `db:"cover_image_url"`
	PostType      string         `db:"post_type"`
	Category      string         `db:"category"`
	Tags          pq.StringArray `db:"tags"`
	Published     bool           `db:"published"`
	Views         int64          `db:"views"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
	domain.Author
	LikesCount    int64 `db:"likes_count"`
	CommentsCount int64 `db:"comments_count"`
}

func (r postRow) toDomain() domain.Post {
	tags := []string(r.Tags)
	if tags == nil {
		tags = []string{}
	}
	return domain.Post{
		ID:            r.ID,
		UserID:        r.UserID,
		Title:         r.Title,
		Content:       r.Content,
		Excerpt:       r.Excerpt,
		CoverImageURL: r.CoverImageURL,
		PostType:      r.PostType,
		Category:      r.Category,
		Tags:          tags,
		Published:     r.Published,
		Views:         r.Views,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Author:        r.Author,
		LikesCount:    r.LikesCount,
		CommentsCount: r.CommentsCount,
	}
}

type PostStore struct {
	db *sqlx.DB
}

func NewPostStore(db *sqlx.DB) *PostStore {
	return &PostStore{db: db}
}

// List returns published posts matching the filter, newest first.
func (s *PostStore) List(ctx context.Context, f domain.PostFilter) ([]domain.Post, error) {
	var sb strings.Builder
	args := make([]interface{}, 0, 3)

	sb.WriteString(postSelect)
	sb.WriteString(" WHERE p.published = true")
	if f.PostType != "" {
		args = append(args, f.PostType)
		sb.WriteString(" AND p.post_type = $" + strconv.Itoa(len(args)))
	}
	if f.UserID != 0 {
		args = append(args, f.UserID)
		sb.WriteString(" AND p.user_id = $" + strconv.Itoa(len(args)))
	}
	args = append(args, f.Limit)
	sb.WriteString(" ORDER BY p.created_at DESC, p.id DESC LIMIT $" + strconv.Itoa(len(args)))

	var rows []postRow
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, sb.String(), args...); err != nil {
		return nil, err
	}

	posts := make([]domain.Post, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, r.toDomain())
	}
	return posts, nil
}

func (s *PostStore) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	var row postRow
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, postSelect+" WHERE p.id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	post := row.toDomain()
	return &post, nil
}

func (s *PostStore) IncrementViews(ctx context.Context, id int64) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, "UPDATE posts SET views = views + 1 WHERE id = $1", id)
	return err
}

func (s *PostStore) Create(ctx context.Context, p domain.NewPost) (*domain.CreatedPost, error) {
	query := `
		INSERT INTO posts (user_id, title, content, excerpt, cover_image_url, post_type, category, tags, published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, title, created_at`

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	var created domain.CreatedPost
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &created, query,
		p.UserID,
		p.Title,
		p.Content,
		p.Excerpt,
		p.CoverImageURL,
		p.PostType,
		p.Category,
		pq.Array(tags),
		p.Published,
	)
	if err != nil {
		return nil, err
	}
	return &created, nil
}
