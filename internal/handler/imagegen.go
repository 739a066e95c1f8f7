package handler

import (
	"context"
	"net/http"

	"social_blog/internal/domain"
)

type imageGenRequest struct {
	Prompt string `json:"prompt"`
}

type imageGenResponse struct {
	URL string `json:"url"`
}

func (h *Handler) ImageGen(ctx context.Context, e Event) Response {
	switch e.HTTPMethod {
	case http.MethodOptions:
		resp := preflight("POST, OPTIONS")
		resp.Headers["Access-Control-Allow-Headers"] = "Content-Type"
		return resp
	case http.MethodPost:
	default:
		return methodNotAllowed()
	}

	var req imageGenRequest
	if err := h.decode(e, &req); err != nil {
		return h.fail(ctx, e, err)
	}
	if req.Prompt == "" {
		return h.fail(ctx, e, domain.NewValidationError("Missing prompt"))
	}

	url, err := h.images.Generate(ctx, req.Prompt)
	if err != nil {
		return h.fail(ctx, e, err)
	}
	return jsonResponse(http.StatusOK, imageGenResponse{URL: url})
}
