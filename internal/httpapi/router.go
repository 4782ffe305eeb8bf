package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with all API routes registered.
func NewRouter(h *Handler, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(log))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/users", h.CreateUser)
		api.GET("/users/:id", h.GetUser)
		api.POST("/users/:id/interests", h.AddInterest)

		api.POST("/users/:id/follow/:target", h.Follow)
		api.DELETE("/users/:id/follow/:target", h.Unfollow)
		api.DELETE("/users/:id/followers/:target", h.RemoveFollower)

		api.GET("/users/:id/followers", h.GetFollowers)
		api.GET("/users/:id/following", h.GetFollowing)
		api.GET("/users/:id/followers/search", h.SearchFollowers)
		api.GET("/users/:id/following/search", h.SearchFollowing)

		api.POST("/users/:id/block/:target", h.Block)
		api.DELETE("/users/:id/block/:target", h.Unblock)
		api.GET("/users/:id/blocked", h.GetBlocked)

		api.GET("/users/:id/mutual/:target", h.GetMutualFollowers)
		api.GET("/users/:id/suggestions", h.GetSuggestions)
		api.GET("/users/:id/suggestions/interests", h.GetInterestSuggestions)
	}

	return router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// requestLogger logs each request with latency and status.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		log.Info("HTTP Request",
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}
