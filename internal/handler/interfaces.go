package handler

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"social_blog/internal/domain"
	"social_blog/internal/service"
)

type StoryService interface {
	CreateStory(ctx context.Context, userID int64, imageURL string) (*domain.Story, error)
	ListStories(ctx context.Context, userID int64) ([]domain.StoryDetail, error)
	Feed(ctx context.Context) ([]domain.FeedEntry, error)
	ViewStory(ctx context.Context, storyID, viewerID int64) error
	ExpireStory(ctx context.Context, storyID, userID int64) error
}

type UserService interface {
	Register(ctx context.Context, in service.RegisterInput) (*domain.AuthResult, error)
	Login(ctx context.Context, email, password string) (*domain.AuthResult, error)
	GetProfile(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, p domain.ProfileUpdate) (*domain.User, error)
}

type PostService interface {
	ListPosts(ctx context.Context, f domain.PostFilter) ([]domain.Post, error)
	GetPost(ctx context.Context, id int64) (*domain.Post, error)
	CreatePost(ctx context.Context, p domain.NewPost) (*domain.CreatedPost, error)
}

type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
