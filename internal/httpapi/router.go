package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"social_blog/internal/handler"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

func NewRouter(h *handler.Handler, db Pinger, logger *slog.Logger, mode string) *gin.Engine {
	gin.SetMode(mode)

	engine := gin.New()
	engine.Use(RequestID(), Recovery(logger), AccessLog(logger))

	engine.GET("/healthz", healthz(db))

	engine.Any("/auth", Adapt(h.Auth))
	engine.Any("/posts", Adapt(h.Posts))
	engine.Any("/stories", Adapt(h.Stories))
	engine.Any("/image-gen", Adapt(h.ImageGen))

	return engine
}

func healthz(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
