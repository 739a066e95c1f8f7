package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"social_blog/internal/domain"
	"social_blog/internal/service"
)

type authCommand int

const (
	authCommandUnknown authCommand = iota
	authCommandRegister
	authCommandLogin
)

func parseAuthCommand(action string) authCommand {
	switch action {
	case "register":
		return authCommandRegister
	case "login":
		return authCommandLogin
	default:
		return authCommandUnknown
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	UserID    int64   `json:"user_id"`
	FullName  *string `json:"full_name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

type userBody struct {
	User *domain.User `json:"user"`
}

func (h *Handler) Auth(ctx context.Context, e Event) Response {
	switch e.HTTPMethod {
	case http.MethodOptions:
		return preflight("GET, POST, PUT, OPTIONS")
	case http.MethodPost:
		action, err := peekAction(e)
		if err != nil {
			return h.fail(ctx, e, err)
		}
		switch parseAuthCommand(action) {
		case authCommandRegister:
			return h.register(ctx, e)
		case authCommandLogin:
			return h.login(ctx, e)
		default:
			return h.fail(ctx, e, domain.NewValidationError("Invalid action"))
		}
	case http.MethodGet:
		return h.getProfile(ctx, e)
	case http.MethodPut:
		return h.updateProfile(ctx, e)
	default:
		return methodNotAllowed()
	}
}

func (h *Handler) register(ctx context.Context, e Event) Response {
	var req registerRequest
	if err := h.decode(e, &req); err != nil {
		return h.fail(ctx, e, err)
	}

	res, err := h.users.Register(ctx, service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return h.fail(ctx, e, err)
	}
	return jsonResponse(http.StatusOK, res)
}

func (h *Handler) login(ctx context.Context, e Event) Response {
	var req loginRequest
	if err := h.decode(e, &req); err != nil {
		return h.fail(ctx, e, err)
	}

	res, err := h.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return h.fail(ctx, e, err)
	}
	return jsonResponse(http.StatusOK, res)
}

func (h *Handler) getProfile(ctx context.Context, e Event) Response {
	userID, ok, err := e.QueryInt64("user_id")
	if err != nil {
		return h.fail(ctx, e, domain.NewValidationError("Invalid user_id"))
	}
	if !ok {
		return h.fail(ctx, e, domain.NewValidationError("Missing user_id"))
	}

	user, err := h.users.GetProfile(ctx, userID)
	if err != nil {
		return h.fail(ctx, e, err)
	}
	return jsonResponse(http.StatusOK, user)
}

func (h *Handler) updateProfile(ctx context.Context, e Event) Response {
	var req updateProfileRequest
	if err := json.Unmarshal(e.bodyBytes(), &req); err != nil {
		return h.fail(ctx, e, domain.NewValidationError("Invalid JSON body"))
	}
	if req.UserID == 0 {
		return h.fail(ctx, e, domain.NewValidationError("Missing user_id"))
	}

	user, err := h.users.UpdateProfile(ctx, req.UserID, domain.ProfileUpdate{
		FullName:  req.FullName,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return h.fail(ctx, e, err)
	}
	return jsonResponse(http.StatusOK, userBody{User: user})
}
