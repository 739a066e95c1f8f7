package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// Event is the transport-neutral request every handler receives.
type Event struct {
	HTTPMethod            string            `json:"httpMethod"`
	Headers               map[string]string `json:"headers"`
	Body                  string            `json:"body"`
	QueryStringParameters map[string]string `json:"queryStringParameters"`
	RequestContext        RequestContext    `json:"requestContext"`
}

type RequestContext struct {
	RequestID string `json:"requestId"`
}

type Response struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

type Func func(ctx context.Context, e Event) Response

func (e Event) Query(name string) string {
	return strings.TrimSpace(e.QueryStringParameters[name])
}

// QueryInt64 returns 0, false when the parameter is absent and an error when
// it is present but not an integer.
func (e Event) QueryInt64(name string) (int64, bool, error) {
	raw := e.Query(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func (e Event) bodyBytes() []byte {
	if strings.TrimSpace(e.Body) == "" {
		return []byte("{}")
	}
	return []byte(e.Body)
}

func preflight(methods string) Response {
	return Response{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Access-Control-Allow-Origin":  "*",
			"Access-Control-Allow-Methods": methods,
			"Access-Control-Allow-Headers": "Content-Type, X-Auth-Token",
			"Access-Control-Max-Age":       "86400",
		},
	}
}

func jsonResponse(status int, v any) Response {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"encode response"}`)
	}
	return Response{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(body),
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func errorResponse(status int, message string) Response {
	return jsonResponse(status, errorBody{Error: message})
}

func methodNotAllowed() Response {
	return errorResponse(http.StatusMethodNotAllowed, "Method not allowed")
}

type successBody struct {
	Success bool `json:"success"`
}
