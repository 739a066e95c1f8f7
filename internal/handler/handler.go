package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"social_blog/internal/domain"
	"social_blog/internal/imagegen"
)

// Handler holds the collaborators shared by the Auth, Posts, Stories and
// ImageGen entry points.
type Handler struct {
	stories      StoryService
	users        UserService
	posts        PostService
	images       ImageGenerator
	validate     *validator.Validate
	logger       *slog.Logger
	redactErrors bool
}

type Option func(*Handler)

// WithRedactedErrors hides the text of unexpected errors from clients.
func WithRedactedErrors(redact bool) Option {
	return func(h *Handler) {
		h.redactErrors = redact
	}
}

func New(
	stories StoryService,
	users UserService,
	posts PostService,
	images ImageGenerator,
	logger *slog.Logger,
	opts ...Option,
) *Handler {
	h := &Handler{
		stories:  stories,
		users:    users,
		posts:    posts,
		images:   images,
		validate: newValidator(),
		logger:   logger.With("component", "handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode parses the event body into dst and validates it. Failures come back
// as *domain.ValidationError so they map to 400.
func (h *Handler) decode(e Event, dst any) error {
	if err := json.Unmarshal(e.bodyBytes(), dst); err != nil {
		return domain.NewValidationError("Invalid JSON body")
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return domain.NewValidationError("Missing required fields", fields...)
	}
	return nil
}

// peekAction reads only the "action" field of the body.
func peekAction(e Event) (string, error) {
	var probe struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(e.bodyBytes(), &probe); err != nil {
		return "", domain.NewValidationError("Invalid JSON body")
	}
	return probe.Action, nil
}

// statusFor maps an error to its response status and client message.
// Unexpected errors report internal=true.
func statusFor(err error) (status int, message string, internal bool) {
	var verr *domain.ValidationError
	var upstream *imagegen.UpstreamError

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message, false
	case errors.Is(err, domain.ErrStoryNotFound):
		return http.StatusNotFound, "Story not found", false
	case errors.Is(err, domain.ErrNotStoryOwner):
		return http.StatusForbidden, "Not authorized to delete this story", false
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found", false
	case errors.Is(err, domain.ErrPostNotFound):
		return http.StatusNotFound, "Post not found", false
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials", false
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "User already exists", false
	case errors.Is(err, imagegen.ErrAPIKeyMissing):
		return http.StatusInternalServerError, "API key not configured", false
	case errors.As(err, &upstream):
		return upstream.StatusCode, "Image generation failed", false
	default:
		return http.StatusInternalServerError, err.Error(), true
	}
}

func (h *Handler) fail(ctx context.Context, e Event, err error) Response {
	status, msg, internal := statusFor(err)

	logger := h.logger.With("request_id", e.RequestContext.RequestID, "method", e.HTTPMethod, "status", status)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "request failed", "error", err)
		if internal && h.redactErrors {
			msg = "Internal server error"
		}
	} else {
		logger.DebugContext(ctx, "request rejected", "error", err)
	}

	return errorResponse(status, msg)
}
