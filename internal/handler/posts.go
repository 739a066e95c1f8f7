package handler

import (
	"context"
	"net/http"
	"strconv"

	"social_blog/internal/domain"
)

type createPostRequest struct {
	UserID        int64    `json:"user_id" validate:"required"`
	Title         string   `json:"title" validate:"required"`
	Content       string   `json:"content" validate:"required"`
	Excerpt       string   `json:"excerpt"`
	CoverImageURL string   `json:"cover_image_url"`
	PostType      string   `json:"post_type"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	Published     *bool    `json:"published"`
}

// Posts serves blog posts and, for clients that only know this endpoint,
// every story action as well.
func (h *Handler) Posts(ctx context.Context, e Event) Response {
	switch e.HTTPMethod {
	case http.MethodOptions:
		return preflight("GET, POST, PUT, OPTIONS")
	case http.MethodGet:
		if e.Query("stories") == "true" {
			return h.listStories(ctx, e)
		}
		if e.Query("id") != "" {
			return h.getPost(ctx, e)
		}
		return h.listPosts(ctx, e)
	case http.MethodPost:
		action, err := peekAction(e)
		if err != nil {
			return h.fail(ctx, e, err)
		}
		if action == "" {
			return h.createPost(ctx, e)
		}
		return h.storyAction(ctx, e, action)
	case http.MethodPut:
		action, err := peekAction(e)
		if err != nil {
			return h.fail(ctx, e, err)
		}
		return h.storyAction(ctx, e, action)
	default:
		return methodNotAllowed()
	}
}

func (h *Handler) storyAction(ctx context.Context, e Event, action string) Response {
	cmd := parseStoryCommand(action)
	if cmd == storyCommandUnknown {
		return h.fail(ctx, e, domain.NewValidationError("Invalid action"))
	}
	return h.runStoryCommand(ctx, e, cmd)
}

func (h *Handler) listPosts(ctx context.Context, e Event) Response {
	f := domain.PostFilter{PostType: e.Query("type")}

	userID, _, err := e.QueryInt64("user_id")
	if err != nil {
		return h.fail(ctx, e, domain.NewValidationError("Invalid user_id"))
	}
	f.UserID = userID

	if raw := e.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return h.fail(ctx, e, domain.NewValidationError("Invalid limit"))
		}
		f.Limit = limit
	}

	posts, err := h.posts.ListPosts(ctx, f)
	if err != nil {
		return h.fail(ctx, e, err)
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return jsonResponse(http.StatusOK, posts)
}

func (h *Handler) getPost(ctx context.Context, e Event) Response {
	id, _, err := e.QueryInt64("id")
	if err != nil {
		return h.fail(ctx, e, domain.NewValidationError("Invalid id"))
	}

	post, err := h.posts.GetPost(ctx, id)
	if err != nil {
		return h.fail(ctx, e, err)
	}
	return jsonResponse(http.StatusOK, post)
}

func (h *Handler) createPost(ctx context.Context, e Event) Response {
	var req createPostRequest
	if err := h.decode(e, &req); err != nil {
		return h.fail(ctx, e, err)
	}

	published := true
	if req.Published != nil {
		published = *req.Published
	}

	created, err := h.posts.CreatePost(ctx, domain.NewPost{
		UserID:        req.UserID,
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		CoverImageURL: req.CoverImageURL,
		PostType:      req.PostType,
		Category:      req.Category,
		Tags:          req.Tags,
		Published:     published,
	})
	if err != nil {
		return h.fail(ctx, e, err)
	}
	return jsonResponse(http.StatusOK, created)
}
