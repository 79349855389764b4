// internal/server/response.go
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutrilog/internal/apierr"
)

var (
	errMalformedAuth = errors.New("authorization header must be a bearer token")
	errInvalidToken  = errors.New("invalid or expired token")
	errMissingAuth   = errors.New("authentication required")
	errWrongUser     = errors.New("token does not belong to this user")
)

// publicMessages replaces internal error text on 5xx responses.
var publicMessages = map[string]string{
	"storage_unavailable":    "database query failed",
	"model_unavailable":      "nutrition model unavailable",
	"model_response_invalid": "nutrition model returned an invalid response",
	"advice_unavailable":     "advice generation failed",
}

func (s *NutritionServer) respondError(c *gin.Context, err error) {
	ae := apierr.From(err)
	msg := ae.Error()
	if ae.Status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			"path", c.Request.URL.Path,
			"request_id", c.GetString(ctxRequestID),
			"code", ae.Code,
			"error", err)
		msg = publicMessages[ae.Code]
		if msg == "" {
			msg = "internal server error"
		}
	}
	c.JSON(ae.Status, gin.H{"error": msg})
}

func abortError(c *gin.Context, ae *apierr.Error) {
	c.AbortWithStatusJSON(ae.Status, gin.H{"error": ae.Error()})
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}

func respondMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// authorize rejects requests acting on another user's data when the caller
// presented a token.
func (s *NutritionServer) authorize(c *gin.Context, userID string) bool {
	caller := c.GetString(ctxAuthUser)
	if caller == "" || userID == "" || caller == userID {
		return true
	}
	abortError(c, apierr.New(http.StatusForbidden, "forbidden", errWrongUser))
	return false
}

// bind decodes the JSON body, reporting decode failures as invalid input.
func (s *NutritionServer) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.respondError(c, apierr.Invalid("invalid request body: %v", err))
		return false
	}
	return true
}
