package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"social_blog/internal/domain"
)

type StoryStore interface {
	Create(ctx context.Context, userID int64, imageURL string, createdAt, expiresAt time.Time) (*domain.Story, error)
	ListVisibleByUser(ctx context.Context, userID int64, now time.Time) ([]domain.AuthoredStory, error)
	ListFeed(ctx context.Context, now time.Time) ([]domain.FeedEntry, error)
	LockOwner(ctx context.Context, storyID int64) (int64, error)
	Expire(ctx context.Context, storyID int64, at time.Time) error
}

type StoryViewStore interface {
	Record(ctx context.Context, storyID, viewerID int64, viewedAt time.Time) error
	ListByStoryIDs(ctx context.Context, storyIDs []int64) ([]domain.StoryView, error)
}

type UserStore interface {
	Create(ctx context.Context, u domain.NewUser) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, p domain.ProfileUpdate) (*domain.User, error)
}

type PostStore interface {
	List(ctx context.Context, f domain.PostFilter) ([]domain.Post, error)
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	IncrementViews(ctx context.Context, id int64) error
	Create(ctx context.Context, p domain.NewPost) (*domain.CreatedPost, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	WithReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, event domain.StoryEvent) error
	Close() error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type TokenIssuer interface {
	Issue(userID int64) (string, error)
}
