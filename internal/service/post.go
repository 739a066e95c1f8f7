package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"

	"social_blog/internal/config"
	"social_blog/internal/domain"
)

type PostService struct {
	posts     PostStore
	txManager TransactionManager
	logger    *slog.Logger
	config    config.PostsConfig
	policy    *bluemonday.Policy
}

func NewPostService(posts PostStore, txManager TransactionManager, logger *slog.Logger, cfg config.PostsConfig) *PostService {
	return &PostService{
		posts:     posts,
		txManager: txManager,
		logger:    logger.With("service", "posts"),
		config:    cfg,
		policy:    bluemonday.UGCPolicy(),
	}
}

// ListPosts clamps the limit to the configured range before querying.
func (s *PostService) ListPosts(ctx context.Context, f domain.PostFilter) ([]domain.Post, error) {
	if f.Limit <= 0 {
		f.Limit = s.config.DefaultLimit
	}
	if f.Limit > s.config.MaxLimit {
		f.Limit = s.config.MaxLimit
	}

	posts, err := s.posts.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// GetPost returns the post as it was before this read and counts the read as
// a view.
func (s *PostService) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	var post *domain.Post

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		p, err := s.posts.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, domain.ErrPostNotFound) {
				return err
			}
			return fmt.Errorf("get post: %w", err)
		}

		if err := s.posts.IncrementViews(txCtx, id); err != nil {
			return fmt.Errorf("increment views: %w", err)
		}

		post = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return post, nil
}

// CreatePost strips scripts and unsafe attributes from the body. Title and
// excerpt are stored as given.
func (s *PostService) CreatePost(ctx context.Context, p domain.NewPost) (*domain.CreatedPost, error) {
	if p.PostType == "" {
		p.PostType = domain.DefaultPostType
	}
	p.Content = s.policy.Sanitize(p.Content)

	created, err := s.posts.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.logger.Info("post created", "post_id", created.ID, "user_id", p.UserID, "post_type", p.PostType)
	return created, nil
}
