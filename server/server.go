// Package server exposes the tutor engine over HTTP. The surface is thin
// by design: three JSON endpoints that delegate to the orchestrator and
// map transport-level failures to 400/404. Every reply, including errors,
// carries a request_id.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/homework-ai/tutor/observability"
	"github.com/homework-ai/tutor/server/middleware"
	"github.com/homework-ai/tutor/tutor"
)

// HTTP surface event types.
const (
	EventRequest observability.EventType = "http.request"
)

// generateRequest is the POST /api/generate_answer body. Question is a
// pointer so an entirely absent key (transport error, 400) is
// distinguishable from an empty question (orchestrator error, 200).
type generateRequest struct {
	Question  *string `json:"question"`
	SessionID string  `json:"session_id"`
}

// New builds the gin engine with middleware and routes wired. The returned
// engine is ready for http.Server.
func New(eng *tutor.Engine, cfg Config, observer observability.Observer) (*gin.Engine, error) {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if observer == nil {
		observer = observability.Noop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(observer))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	api := r.Group("/api")

	api.GET("/health", handleHealth)
	api.GET("/chat_history/:session_id", handleHistory(eng))

	generate := api.Group("/")
	if cfg.RateLimit != "" {
		limit, window, err := middleware.ParseRate(cfg.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("invalid rate limit: %w", err)
		}

		var counter middleware.Counter = middleware.NewMemoryCounter()
		if cfg.RedisAddr != "" {
			counter = middleware.NewRedisCounter(redis.NewClient(&redis.Options{
				Addr: cfg.RedisAddr,
			}))
		}
		generate.Use(middleware.RateLimit(counter, limit, window))
	}
	generate.POST("/generate_answer", handleGenerate(eng))

	return r, nil
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"request_id": uuid.NewString(),
	})
}

func handleGenerate(eng *tutor.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req generateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "Invalid request data",
				"request_id": uuid.NewString(),
			})
			return
		}

		if req.Question == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "No question provided",
				"request_id": uuid.NewString(),
			})
			return
		}

		// Present-but-empty questions reach the orchestrator, which
		// records the turn and answers with an error envelope at 200.
		env := eng.HandleQuestion(c.Request.Context(), req.SessionID, *req.Question)
		c.JSON(http.StatusOK, env)
	}
}

func handleHistory(eng *tutor.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("session_id")

		history, err := eng.History(sessionID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error":      "Invalid session ID",
				"request_id": uuid.NewString(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"session_id": sessionID,
			"history":    history,
			"request_id": uuid.NewString(),
		})
	}
}

func requestLogger(observer observability.Observer) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		observer.OnEvent(c.Request.Context(), observability.Event{
			Type:      EventRequest,
			Level:     observability.LevelInfo,
			Timestamp: start,
			Source:    "server",
			Data: map[string]any{
				"method":   c.Request.Method,
				"path":     c.Request.URL.Path,
				"status":   c.Writer.Status(),
				"duration": time.Since(start).String(),
				"client":   c.ClientIP(),
			},
		})
	}
}
