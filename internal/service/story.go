package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"social_blog/internal/config"
	"social_blog/internal/domain"
)

// StoryService manages the story lifecycle: creation, listing of active
// stories, view tracking and forced expiry. It keeps no state between calls.
type StoryService struct {
	stories   StoryStore
	views     StoryViewStore
	txManager TransactionManager
	publisher Publisher
	logger    *slog.Logger
	config    config.StoriesConfig
	now       func() time.Time
}

func NewStoryService(
	stories StoryStore,
	views StoryViewStore,
	txManager TransactionManager,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.StoriesConfig,
) *StoryService {
	return &StoryService{
		stories:   stories,
		views:     views,
		txManager: txManager,
		publisher: publisher,
		logger:    logger.With("service", "stories"),
		config:    cfg,
		now:       time.Now,
	}
}

func (s *StoryService) CreateStory(ctx context.Context, userID int64, imageURL string) (*domain.Story, error) {
	now := s.clock()

	story, err := s.stories.Create(ctx, userID, imageURL, now, now.Add(s.config.TTL))
	if err != nil {
		return nil, fmt.Errorf("create story: %w", err)
	}

	s.logger.Info("story created", "story_id", story.ID, "user_id", userID, "expires_at", story.ExpiresAt)
	s.publish(ctx, domain.StoryEvent{Type: domain.StoryCreated, StoryID: story.ID, UserID: userID, At: now})

	return story, nil
}

// ListStories returns the author's active stories, newest first, each with
// every recorded view.
func (s *StoryService) ListStories(ctx context.Context, userID int64) ([]domain.StoryDetail, error) {
	now := s.clock()
	details := []domain.StoryDetail{}

	err := s.txManager.WithReadOnlyTransaction(ctx, func(txCtx context.Context) error {
		stories, err := s.stories.ListVisibleByUser(txCtx, userID, now)
		if err != nil {
			return fmt.Errorf("list stories: %w", err)
		}
		if len(stories) == 0 {
			return nil
		}

		ids := make([]int64, len(stories))
		for i, st := range stories {
			ids[i] = st.ID
		}

		views, err := s.views.ListByStoryIDs(txCtx, ids)
		if err != nil {
			return fmt.Errorf("list story views: %w", err)
		}

		byStory := make(map[int64][]domain.StoryView, len(stories))
		for _, v := range views {
			byStory[v.StoryID] = append(byStory[v.StoryID], v)
		}

		for _, st := range stories {
			storyViews := byStory[st.ID]
			if storyViews == nil {
				storyViews = []domain.StoryView{}
			}
			details = append(details, domain.StoryDetail{AuthoredStory: st, Views: storyViews})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return details, nil
}

// Feed returns one entry per author with at least one active story.
func (s *StoryService) Feed(ctx context.Context) ([]domain.FeedEntry, error) {
	entries, err := s.stories.ListFeed(ctx, s.clock())
	if err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}
	return entries, nil
}

// ViewStory records that viewerID opened storyID. Repeat views, views of
// expired stories and views of unknown stories all succeed silently.
func (s *StoryService) ViewStory(ctx context.Context, storyID, viewerID int64) error {
	now := s.clock()

	if err := s.views.Record(ctx, storyID, viewerID, now); err != nil {
		return fmt.Errorf("record view: %w", err)
	}

	s.logger.Debug("story viewed", "story_id", storyID, "viewer_id", viewerID)
	s.publish(ctx, domain.StoryEvent{Type: domain.StoryViewed, StoryID: storyID, ViewerID: viewerID, At: now})

	return nil
}

// ExpireStory ends a story early on behalf of its author. The ownership check
// and the update share one transaction holding a lock on the story row.
func (s *StoryService) ExpireStory(ctx context.Context, storyID, userID int64) error {
	now := s.clock()

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		ownerID, err := s.stories.LockOwner(txCtx, storyID)
		if err != nil {
			if errors.Is(err, domain.ErrStoryNotFound) {
				return err
			}
			return fmt.Errorf("lookup story owner: %w", err)
		}

		if ownerID != userID {
			return domain.ErrNotStoryOwner
		}

		if err := s.stories.Expire(txCtx, storyID, now); err != nil {
			return fmt.Errorf("expire story: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotStoryOwner) {
			s.logger.Warn("rejected story expiry by non-owner", "story_id", storyID, "user_id", userID)
		}
		return err
	}

	s.logger.Info("story expired", "story_id", storyID, "user_id", userID)
	s.publish(ctx, domain.StoryEvent{Type: domain.StoryExpired, StoryID: storyID, UserID: userID, At: now})

	return nil
}

func (s *StoryService) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// publish runs after the write committed, so a broker failure is only logged.
func (s *StoryService) publish(ctx context.Context, event domain.StoryEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("publish story event", "type", event.Type, "story_id", event.StoryID, "error", err)
	}
}
