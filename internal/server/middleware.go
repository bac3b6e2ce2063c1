package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rtzll/transcriptgrab/internal/auth"
	"github.com/rtzll/transcriptgrab/internal/logger"
)

const userIDKey = "userID"

// identify attaches the caller's user id when a valid session token is
// present. Invalid or missing tokens leave the request anonymous.
func (s *Server) identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.deps.Issuer == nil {
			c.Next()
			return
		}
		token := auth.TokenFromRequest(c.Request)
		if token == "" {
			c.Next()
			return
		}
		userID, err := s.deps.Issuer.Verify(token)
		if err != nil {
			s.log.Debug("ignoring invalid session token", "error", err)
			c.Next()
			return
		}
		c.Set(userIDKey, userID)
		c.Request = c.Request.WithContext(auth.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []any{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if id := currentUser(c); id != "" {
			fields = append(fields, "user_id", id)
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
