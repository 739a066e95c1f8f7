//go:build integration

package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"social_blog/internal/config"
	"social_blog/internal/domain"
	"social_blog/internal/service"
	"social_blog/testdata/utils"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
	logger    *slog.Logger
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.Require().NoError(NewMigrator(connStr, "../../../migrations", s.logger).Up())

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, err := s.db.ExecContext(s.ctx,
		"TRUNCATE story_views, stories, comments, likes, posts, users RESTART IDENTITY CASCADE")
	s.Require().NoError(err)
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) createUser(username string) int64 {
	user, err := NewUserStore(s.db).Create(s.ctx, domain.NewUser{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hash",
		FullName:     "User " + username,
	})
	s.Require().NoError(err)
	return user.ID
}

func (s *PostgresIntegrationSuite) createStory(userID int64, createdAt time.Time, ttl time.Duration) int64 {
	story, err := NewStoryStore(s.db).Create(s.ctx, userID, "https://img/story.png", createdAt, createdAt.Add(ttl))
	s.Require().NoError(err)
	return story.ID
}

func (s *PostgresIntegrationSuite) now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Stories

func (s *PostgresIntegrationSuite) TestStoryStore_Create() {
	userID := s.createUser("anna")
	now := s.now()

	story, err := NewStoryStore(s.db).Create(s.ctx, userID, "https://img/1.png", now, now.Add(24*time.Hour))

	s.Require().NoError(err)
	s.NotZero(story.ID)
	s.Equal(userID, story.UserID)
	s.Equal("https://img/1.png", story.ImageURL)
	s.True(story.CreatedAt.Equal(now))
	s.True(story.ExpiresAt.Equal(now.Add(24 * time.Hour)))
}

func (s *PostgresIntegrationSuite) TestStoryStore_ListVisibleByUser() {
	store := NewStoryStore(s.db)
	anna := s.createUser("anna")
	bob := s.createUser("bob")
	now := s.now()

	older := s.createStory(anna, now.Add(-2*time.Hour), 24*time.Hour)
	newer := s.createStory(anna, now.Add(-time.Hour), 24*time.Hour)
	s.createStory(anna, now.Add(-25*time.Hour), 24*time.Hour)
	s.createStory(bob, now, 24*time.Hour)

	stories, err := store.ListVisibleByUser(s.ctx, anna, now)

	s.Require().NoError(err)
	s.Require().Len(stories, 2)
	s.Equal(newer, stories[0].ID)
	s.Equal(older, stories[1].ID)
	s.Equal("anna", stories[0].Username)
	s.Equal("User anna", stories[0].FullName)
}

func (s *PostgresIntegrationSuite) TestStoryStore_ListVisibleByUser_BoundaryAtExpiry() {
	store := NewStoryStore(s.db)
	anna := s.createUser("anna")
	created := s.now().Add(-time.Hour)
	s.createStory(anna, created, time.Hour)

	before, err := store.ListVisibleByUser(s.ctx, anna, created.Add(time.Hour-time.Microsecond))
	s.Require().NoError(err)
	s.Len(before, 1)

	at, err := store.ListVisibleByUser(s.ctx, anna, created.Add(time.Hour))
	s.Require().NoError(err)
	s.Empty(at)
}

func (s *PostgresIntegrationSuite) TestStoryStore_ListVisibleByUser_SameTimestampOrdersByID() {
	store := NewStoryStore(s.db)
	anna := s.createUser("anna")
	now := s.now()

	first := s.createStory(anna, now, 24*time.Hour)
	second := s.createStory(anna, now, 24*time.Hour)

	stories, err := store.ListVisibleByUser(s.ctx, anna, now)

	s.Require().NoError(err)
	s.Require().Len(stories, 2)
	s.Equal(second, stories[0].ID)
	s.Equal(first, stories[1].ID)
}

func (s *PostgresIntegrationSuite) TestStoryStore_ListFeed() {
	store := NewStoryStore(s.db)
	views := NewStoryViewStore(s.db)
	anna := s.createUser("anna")
	bob := s.createUser("bob")
	carl := s.createUser("carl")
	now := s.now()

	annaOld := s.createStory(anna, now.Add(-3*time.Hour), 24*time.Hour)
	annaNew := s.createStory(anna, now.Add(-time.Hour), 24*time.Hour)
	s.createStory(anna, now.Add(-30*time.Hour), 24*time.Hour)
	bobStory := s.createStory(bob, now.Add(-2*time.Hour), 24*time.Hour)
	s.createStory(carl, now.Add(-48*time.Hour), 24*time.Hour)

	s.Require().NoError(views.Record(s.ctx, annaNew, bob, now))
	s.Require().NoError(views.Record(s.ctx, annaNew, carl, now))
	s.Require().NoError(views.Record(s.ctx, annaOld, bob, now))

	feed, err := store.ListFeed(s.ctx, now)

	s.Require().NoError(err)
	s.Require().Len(feed, 2)

	s.Equal(annaNew, feed[0].ID)
	s.Equal(anna, feed[0].UserID)
	s.Equal("anna", feed[0].Username)
	s.Equal(int64(2), feed[0].StoryCount)
	s.Equal(int64(2), feed[0].ViewCount)

	s.Equal(bobStory, feed[1].ID)
	s.Equal(int64(1), feed[1].StoryCount)
	s.Equal(int64(0), feed[1].ViewCount)
}

func (s *PostgresIntegrationSuite) TestStoryStore_ListFeed_TieBreakIsDeterministic() {
	store := NewStoryStore(s.db)
	anna := s.createUser("anna")
	now := s.now()

	s.createStory(anna, now, 24*time.Hour)
	latest := s.createStory(anna, now, 24*time.Hour)

	for i := 0; i < 3; i++ {
		feed, err := store.ListFeed(s.ctx, now)
		s.Require().NoError(err)
		s.Require().Len(feed, 1)
		s.Equal(latest, feed[0].ID)
		s.Equal(int64(2), feed[0].StoryCount)
	}
}

func (s *PostgresIntegrationSuite) TestStoryStore_ListFeed_Empty() {
	feed, err := NewStoryStore(s.db).ListFeed(s.ctx, s.now())

	s.NoError(err)
	s.NotNil(feed)
	s.Empty(feed)
}

func (s *PostgresIntegrationSuite) TestStoryStore_LockOwner_NotFound() {
	tm := NewTransactionManager(s.db)
	store := NewStoryStore(s.db)

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		_, err := store.LockOwner(ctx, 404)
		return err
	})

	s.ErrorIs(err, domain.ErrStoryNotFound)
}

func (s *PostgresIntegrationSuite) TestStoryStore_ExpireNeverExtends() {
	store := NewStoryStore(s.db)
	anna := s.createUser("anna")
	now := s.now()
	id := s.createStory(anna, now.Add(-time.Hour), 24*time.Hour)

	s.Require().NoError(store.Expire(s.ctx, id, now))
	s.Require().NoError(store.Expire(s.ctx, id, now.Add(time.Hour)))

	var expiresAt time.Time
	s.Require().NoError(s.db.GetContext(s.ctx, &expiresAt, "SELECT expires_at FROM stories WHERE id = $1", id))
	s.True(expiresAt.Equal(now), "expires_at = %s", expiresAt)

	var count int
	s.Require().NoError(s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM stories WHERE id = $1", id))
	s.Equal(1, count)
}

// Views

func (s *PostgresIntegrationSuite) TestStoryViewStore_RecordIsIdempotent() {
	views := NewStoryViewStore(s.db)
	anna := s.createUser("anna")
	now := s.now()
	id := s.createStory(anna, now, 24*time.Hour)

	s.Require().NoError(views.Record(s.ctx, id, 7, now))
	s.Require().NoError(views.Record(s.ctx, id, 7, now.Add(time.Minute)))
	s.Require().NoError(views.Record(s.ctx, id, 7, now.Add(2*time.Minute)))

	got, err := views.ListByStoryIDs(s.ctx, []int64{id})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.True(got[0].ViewedAt.Equal(now))
}

func (s *PostgresIntegrationSuite) TestStoryViewStore_RecordUnknownStory() {
	views := NewStoryViewStore(s.db)

	s.NoError(views.Record(s.ctx, 9999, 1, s.now()))

	got, err := views.ListByStoryIDs(s.ctx, []int64{9999})
	s.NoError(err)
	s.Len(got, 1)
}

func (s *PostgresIntegrationSuite) TestStoryViewStore_ListByStoryIDs() {
	views := NewStoryViewStore(s.db)
	now := s.now()

	s.Require().NoError(views.Record(s.ctx, 1, 8, now.Add(time.Minute)))
	s.Require().NoError(views.Record(s.ctx, 1, 7, now))
	s.Require().NoError(views.Record(s.ctx, 2, 7, now))
	s.Require().NoError(views.Record(s.ctx, 3, 7, now))

	got, err := views.ListByStoryIDs(s.ctx, []int64{1, 2})

	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal(int64(7), got[0].ViewerID)
	for _, v := range got {
		s.NotEqual(int64(3), v.StoryID)
	}

	none, err := views.ListByStoryIDs(s.ctx, nil)
	s.NoError(err)
	s.Empty(none)
}

// Story lifecycle against the real store

func (s *PostgresIntegrationSuite) newStoryService() *service.StoryService {
	return service.NewStoryService(
		NewStoryStore(s.db),
		NewStoryViewStore(s.db),
		NewTransactionManager(s.db),
		nil,
		s.logger,
		config.StoriesConfig{TTL: 24 * time.Hour},
	)
}

func (s *PostgresIntegrationSuite) TestStoryLifecycle() {
	svc := s.newStoryService()
	anna := s.createUser("anna")
	bob := s.createUser("bob")

	story, err := svc.CreateStory(s.ctx, anna, "https://img/s1.png")
	s.Require().NoError(err)

	s.Require().NoError(svc.ViewStory(s.ctx, story.ID, bob))
	s.Require().NoError(svc.ViewStory(s.ctx, story.ID, bob))

	details, err := svc.ListStories(s.ctx, anna)
	s.Require().NoError(err)
	s.Require().Len(details, 1)
	s.Len(details[0].Views, 1)
	s.Equal(bob, details[0].Views[0].ViewerID)

	s.ErrorIs(svc.ExpireStory(s.ctx, story.ID, bob), domain.ErrNotStoryOwner)

	details, err = svc.ListStories(s.ctx, anna)
	s.Require().NoError(err)
	s.Len(details, 1)

	s.Require().NoError(svc.ExpireStory(s.ctx, story.ID, anna))
	s.Require().NoError(svc.ExpireStory(s.ctx, story.ID, anna))

	details, err = svc.ListStories(s.ctx, anna)
	s.Require().NoError(err)
	s.Empty(details)

	feed, err := svc.Feed(s.ctx)
	s.Require().NoError(err)
	s.Empty(feed)

	s.NoError(svc.ViewStory(s.ctx, story.ID, anna))
	s.ErrorIs(svc.ExpireStory(s.ctx, 9999, anna), domain.ErrStoryNotFound)
}

// Users

func (s *PostgresIntegrationSuite) TestUserStore_CreateDuplicate() {
	store := NewUserStore(s.db)
	s.createUser("anna")

	_, err := store.Create(s.ctx, domain.NewUser{
		Email:        "anna@example.com",
		Username:     "anna2",
		PasswordHash: "hash",
	})

	s.ErrorIs(err, domain.ErrUserExists)
}

func (s *PostgresIntegrationSuite) TestUserStore_Lookups() {
	store := NewUserStore(s.db)
	id := s.createUser("anna")

	byEmail, err := store.GetByEmail(s.ctx, "anna@example.com")
	s.Require().NoError(err)
	s.Equal(id, byEmail.ID)
	s.Equal("hash", byEmail.PasswordHash)

	byID, err := store.GetByID(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(byID.PasswordHash)

	_, err = store.GetByID(s.ctx, 404)
	s.ErrorIs(err, domain.ErrUserNotFound)
}

func (s *PostgresIntegrationSuite) TestUserStore_UpdateProfile() {
	store := NewUserStore(s.db)
	id := s.createUser("anna")

	user, err := store.UpdateProfile(s.ctx, id, domain.ProfileUpdate{
		Bio:       utils.Ptr("hello"),
		AvatarURL: utils.Ptr("https://img/a.png"),
	})

	s.Require().NoError(err)
	s.Equal("hello", *user.Bio)
	s.Equal("https://img/a.png", *user.AvatarURL)
	s.Equal("User anna", user.FullName)

	_, err = store.UpdateProfile(s.ctx, 404, domain.ProfileUpdate{Bio: utils.Ptr("x")})
	s.ErrorIs(err, domain.ErrUserNotFound)
}

// Posts

func (s *PostgresIntegrationSuite) TestPostStore_CreateAndGet() {
	store := NewPostStore(s.db)
	anna := s.createUser("anna")

	created, err := store.Create(s.ctx, domain.NewPost{
		UserID:    anna,
		Title:     "Hello",
		Content:   "World",
		PostType:  domain.DefaultPostType,
		Tags:      []string{"go", "sql"},
		Published: true,
	})
	s.Require().NoError(err)
	s.Equal("Hello", created.Title)

	s.Require().NoError(store.IncrementViews(s.ctx, created.ID))

	post, err := store.GetByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal([]string{"go", "sql"}, post.Tags)
	s.Equal(int64(1), post.Views)
	s.Equal("anna", post.Username)
	s.Zero(post.LikesCount)

	_, err = store.GetByID(s.ctx, 404)
	s.ErrorIs(err, domain.ErrPostNotFound)
}

func (s *PostgresIntegrationSuite) TestPostStore_ListFilters() {
	store := NewPostStore(s.db)
	anna := s.createUser("anna")
	bob := s.createUser("bob")

	for _, p := range []domain.NewPost{
		{UserID: anna, Title: "a1", Content: "c", PostType: "blog", Published: true},
		{UserID: anna, Title: "a2", Content: "c", PostType: "story", Published: true},
		{UserID: bob, Title: "b1", Content: "c", PostType: "blog", Published: true},
		{UserID: bob, Title: "draft", Content: "c", PostType: "blog", Published: false},
	} {
		_, err := store.Create(s.ctx, p)
		s.Require().NoError(err)
	}

	all, err := store.List(s.ctx, domain.PostFilter{Limit: 10})
	s.Require().NoError(err)
	s.Len(all, 3)
	s.Equal("b1", all[0].Title)

	blogs, err := store.List(s.ctx, domain.PostFilter{PostType: "blog", Limit: 10})
	s.Require().NoError(err)
	s.Len(blogs, 2)

	annas, err := store.List(s.ctx, domain.PostFilter{UserID: anna, Limit: 1})
	s.Require().NoError(err)
	s.Require().Len(annas, 1)
	s.Equal("a2", annas[0].Title)
}

// Transactions

func (s *PostgresIntegrationSuite) TestTransaction_Commit() {
	tm := NewTransactionManager(s.db)
	store := NewStoryStore(s.db)
	anna := s.createUser("anna")
	now := s.now()

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		_, err := store.Create(ctx, anna, "https://img/tx.png", now, now.Add(time.Hour))
		return err
	})
	s.NoError(err)

	var count int
	s.Require().NoError(s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM stories WHERE user_id = $1", anna))
	s.Equal(1, count)
}

func (s *PostgresIntegrationSuite) TestTransaction_Rollback() {
	tm := NewTransactionManager(s.db)
	store := NewStoryStore(s.db)
	anna := s.createUser("anna")
	now := s.now()
	existing := s.createStory(anna, now, time.Hour)

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		if _, err := store.Create(ctx, anna, "https://img/rollback.png", now, now.Add(time.Hour)); err != nil {
			return err
		}
		if err := store.Expire(ctx, existing, now.Add(-time.Minute)); err != nil {
			return err
		}
		return context.Canceled
	})
	s.ErrorIs(err, context.Canceled)

	var count int
	s.Require().NoError(s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM stories"))
	s.Equal(1, count)

	visible, err := store.ListVisibleByUser(s.ctx, anna, now)
	s.Require().NoError(err)
	s.Len(visible, 1)
}

func (s *PostgresIntegrationSuite) TestTransaction_ReadOnlyRejectsWrites() {
	tm := NewTransactionManager(s.db)
	views := NewStoryViewStore(s.db)

	err := tm.WithReadOnlyTransaction(s.ctx, func(ctx context.Context) error {
		return views.Record(ctx, 1, 1, s.now())
	})

	s.Error(err)
}

func (s *PostgresIntegrationSuite) TestMigrator_Version() {
	connStr, err := s.container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	version, dirty, err := NewMigrator(connStr, "../../../migrations", s.logger).Version()

	s.NoError(err)
	s.False(dirty)
	s.Equal(uint(3), version)
}
