package domain

import "time"

type StoryEventType string

const (
	StoryCreated StoryEventType = "story.created"
	StoryViewed  StoryEventType = "story.viewed"
	StoryExpired StoryEventType = "story.expired"
)

type StoryEvent struct {
	Type     StoryEventType `json:"type"`
	StoryID  int64          `json:"story_id"`
	UserID   int64          `json:"user_id,omitempty"`
	ViewerID int64          `json:"viewer_id,omitempty"`
	At       time.Time      `json:"at"`
}
