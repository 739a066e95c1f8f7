package httpapi

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"social_blog/internal/handler"
)

const maxBodyBytes = 1 << 20

// Adapt exposes an event handler as a gin route.
func Adapt(fn handler.Func) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := toEvent(c)
		if err != nil {
			c.Header("Access-Control-Allow-Origin", "*")
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}

		writeResponse(c, fn(c.Request.Context(), event))
	}
}

func toEvent(c *gin.Context) (handler.Event, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		return handler.Event{}, err
	}

	headers := make(map[string]string, len(c.Request.Header))
	for name := range c.Request.Header {
		headers[name] = c.Request.Header.Get(name)
	}

	query := c.Request.URL.Query()
	params := make(map[string]string, len(query))
	for name := range query {
		params[name] = query.Get(name)
	}

	return handler.Event{
		HTTPMethod:            c.Request.Method,
		Headers:               headers,
		Body:                  string(body),
		QueryStringParameters: params,
		RequestContext: handler.RequestContext{
			RequestID: c.GetString(contextKeyRequestID),
		},
	}, nil
}

func writeResponse(c *gin.Context, resp handler.Response) {
	for name, value := range resp.Headers {
		c.Header(name, value)
	}

	if resp.Body == "" {
		c.Status(resp.StatusCode)
		c.Writer.WriteHeaderNow()
		return
	}

	c.Data(resp.StatusCode, resp.Headers["Content-Type"], []byte(resp.Body))
}
