package handler

import (
	"context"
	"net/http"

	"social_blog/internal/domain"
)

type storyCommand int

const (
	storyCommandUnknown storyCommand = iota
	storyCommandCreate
	storyCommandView
	storyCommandExpire
)

var storyCommands = map[string]storyCommand{
	"create_story": storyCommandCreate,
	"view_story":   storyCommandView,
	"delete_story": storyCommandExpire,
}

func parseStoryCommand(action string) storyCommand {
	return storyCommands[action]
}

type createStoryRequest struct {
	UserID   int64  `json:"user_id" validate:"required"`
	ImageURL string `json:"image_url" validate:"required"`
}

type viewStoryRequest struct {
	StoryID  int64 `json:"story_id" validate:"required"`
	ViewerID int64 `json:"viewer_id" validate:"required"`
}

type expireStoryRequest struct {
	StoryID int64 `json:"story_id" validate:"required"`
	UserID  int64 `json:"user_id" validate:"required"`
}

// Stories serves story actions only: GET lists, POST and PUT run a command.
func (h *Handler) Stories(ctx context.Context, e Event) Response {
	switch e.HTTPMethod {
	case http.MethodOptions:
		return preflight("GET, POST, PUT, OPTIONS")
	case http.MethodGet:
		return h.listStories(ctx, e)
	case http.MethodPost, http.MethodPut:
		action, err := peekAction(e)
		if err != nil {
			return h.fail(ctx, e, err)
		}
		cmd := parseStoryCommand(action)
		if cmd == storyCommandUnknown {
			return h.fail(ctx, e, domain.NewValidationError("Invalid action"))
		}
		return h.runStoryCommand(ctx, e, cmd)
	default:
		return methodNotAllowed()
	}
}

func (h *Handler) runStoryCommand(ctx context.Context, e Event, cmd storyCommand) Response {
	switch cmd {
	case storyCommandCreate:
		return h.createStory(ctx, e)
	case storyCommandView:
		return h.viewStory(ctx, e)
	case storyCommandExpire:
		return h.expireStory(ctx, e)
	default:
		return h.fail(ctx, e, domain.NewValidationError("Invalid action"))
	}
}

// listStories returns the author's stories with views when user_id is given,
// and the per-author feed otherwise.
func (h *Handler) listStories(ctx context.Context, e Event) Response {
	userID, ok, err := e.QueryInt64("user_id")
	if err != nil {
		return h.fail(ctx, e, domain.NewValidationError("Invalid user_id"))
	}

	if ok {
		details, err := h.stories.ListStories(ctx, userID)
		if err != nil {
			return h.fail(ctx, e, err)
		}
		return jsonResponse(http.StatusOK, details)
	}

	feed, err := h.stories.Feed(ctx)
	if err != nil {
		return h.fail(ctx, e, err)
	}
	if feed == nil {
		feed = []domain.FeedEntry{}
	}
	return jsonResponse(http.StatusOK, feed)
}

func (h *Handler) createStory(ctx context.Context, e Event) Response {
	var req createStoryRequest
	if err := h.decode(e, &req); err != nil {
		return h.fail(ctx, e, err)
	}

	story, err := h.stories.CreateStory(ctx, req.UserID, req.ImageURL)
	if err != nil {
		return h.fail(ctx, e, err)
	}
	return jsonResponse(http.StatusCreated, story)
}

func (h *Handler) viewStory(ctx context.Context, e Event) Response {
	var req viewStoryRequest
	if err := h.decode(e, &req); err != nil {
		return h.fail(ctx, e, err)
	}

	if err := h.stories.ViewStory(ctx, req.StoryID, req.ViewerID); err != nil {
		return h.fail(ctx, e, err)
	}
	return jsonResponse(http.StatusOK, successBody{Success: true})
}

func (h *Handler) expireStory(ctx context.Context, e Event) Response {
	var req expireStoryRequest
	if err := h.decode(e, &req); err != nil {
		return h.fail(ctx, e, err)
	}

	if err := h.stories.ExpireStory(ctx, req.StoryID, req.UserID); err != nil {
		return h.fail(ctx, e, err)
	}
	return jsonResponse(http.StatusOK, successBody{Success: true})
}
