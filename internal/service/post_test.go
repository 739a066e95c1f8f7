package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"social_blog/internal/config"
	"social_blog/internal/domain"
	"social_blog/internal/service/mocks"
)

type PostServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	posts     *mocks.MockPostStore
	txManager *mocks.MockTransactionManager

	service *PostService
}

func (s *PostServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.posts = mocks.NewMockPostStore(s.ctrl)
	s.txManager = mocks.NewMockTransactionManager(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.service = NewPostService(s.posts, s.txManager, logger, config.PostsConfig{DefaultLimit: 20, MaxLimit: 100})

	s.txManager.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()
}

func (s *PostServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestPostServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PostServiceTestSuite))
}

func (s *PostServiceTestSuite) TestListPosts_Limits() {
	ctx := context.Background()

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default when unset", 0, 20},
		{"default when negative", -5, 20},
		{"kept when in range", 50, 50},
		{"clamped to max", 1000, 100},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.posts.EXPECT().List(ctx, domain.PostFilter{PostType: "blog", Limit: tt.want}).Return([]domain.Post{}, nil)

			posts, err := s.service.ListPosts(ctx, domain.PostFilter{PostType: "blog", Limit: tt.limit})

			s.NoError(err)
			s.NotNil(posts)
		})
	}
}

func (s *PostServiceTestSuite) TestListPosts_StoreError() {
	s.posts.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

	posts, err := s.service.ListPosts(context.Background(), domain.PostFilter{})

	s.Nil(posts)
	s.Contains(err.Error(), "list posts")
}

func (s *PostServiceTestSuite) TestGetPost_CountsView() {
	ctx := context.Background()
	post := &domain.Post{ID: 7, Title: "Hello", Views: 4}

	gomock.InOrder(
		s.posts.EXPECT().GetByID(ctx, int64(7)).Return(post, nil),
		s.posts.EXPECT().IncrementViews(ctx, int64(7)).Return(nil),
	)

	got, err := s.service.GetPost(ctx, 7)

	s.NoError(err)
	s.Equal(int64(4), got.Views)
}

func (s *PostServiceTestSuite) TestGetPost_NotFound() {
	ctx := context.Background()

	s.posts.EXPECT().GetByID(ctx, int64(7)).Return(nil, domain.ErrPostNotFound)

	got, err := s.service.GetPost(ctx, 7)

	s.Nil(got)
	s.ErrorIs(err, domain.ErrPostNotFound)
}

func (s *PostServiceTestSuite) TestGetPost_IncrementError() {
	ctx := context.Background()

	s.posts.EXPECT().GetByID(ctx, int64(7)).Return(&domain.Post{ID: 7}, nil)
	s.posts.EXPECT().IncrementViews(ctx, int64(7)).Return(errors.New("conn reset"))

	got, err := s.service.GetPost(ctx, 7)

	s.Nil(got)
	s.Contains(err.Error(), "increment views")
}

func (s *PostServiceTestSuite) TestCreatePost_DefaultsType() {
	ctx := context.Background()
	created := &domain.CreatedPost{ID: 1, Title: "First"}

	s.posts.EXPECT().Create(ctx, domain.NewPost{UserID: 2, Title: "First", PostType: "blog"}).Return(created, nil)

	got, err := s.service.CreatePost(ctx, domain.NewPost{UserID: 2, Title: "First"})

	s.NoError(err)
	s.Equal(created, got)
}

func (s *PostServiceTestSuite) TestCreatePost_KeepsType() {
	ctx := context.Background()

	s.posts.EXPECT().Create(ctx, domain.NewPost{UserID: 2, Title: "Pic", PostType: "photo"}).Return(&domain.CreatedPost{ID: 2}, nil)

	_, err := s.service.CreatePost(ctx, domain.NewPost{UserID: 2, Title: "Pic", PostType: "photo"})

	s.NoError(err)
}

func (s *PostServiceTestSuite) TestCreatePost_SanitizesContent() {
	ctx := context.Background()

	s.posts.EXPECT().Create(ctx, domain.NewPost{
		UserID:   2,
		Title:    "XSS",
		Content:  `<p>hello</p><a href="https://example.com" rel="nofollow">link</a>`,
		PostType: "blog",
	}).Return(&domain.CreatedPost{ID: 3}, nil)

	_, err := s.service.CreatePost(ctx, domain.NewPost{
		UserID:  2,
		Title:   "XSS",
		Content: `<p onclick="steal()">hello</p><script>alert(1)</script><a href="https://example.com">link</a>`,
	})

	s.NoError(err)
}
