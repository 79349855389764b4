// internal/server/middleware.go
package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"nutrilog/internal/account"
	"nutrilog/internal/apierr"
	"nutrilog/internal/logger"
)

const (
	headerRequestID = "X-Request-ID"

	ctxRequestID = "request_id"
	ctxAuthUser  = "auth_user_id"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
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
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString(ctxRequestID),
		}
		if uid := c.GetString(ctxAuthUser); uid != "" {
			fields = append(fields, "user_id", uid)
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

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Requested-With", headerRequestID},
		ExposeHeaders: []string{headerRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// authenticate resolves a bearer token, when present, to the caller's user
// id. A malformed or expired token is always rejected.
func authenticate(accounts *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abortError(c, apierr.New(http.StatusUnauthorized, "unauthorized", errMalformedAuth))
			return
		}
		uid, err := accounts.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			abortError(c, apierr.New(http.StatusUnauthorized, "unauthorized", errInvalidToken))
			return
		}
		c.Set(ctxAuthUser, uid)
		c.Next()
	}
}

func requireAuth(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if required && c.GetString(ctxAuthUser) == "" {
			abortError(c, apierr.New(http.StatusUnauthorized, "unauthorized", errMissingAuth))
			return
		}
		c.Next()
	}
}
