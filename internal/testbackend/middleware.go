package testbackend

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hireboard-dev/hireboard/internal/models"
)

const (
	bearerPrefix = "Bearer "
	userKey      = "user"
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
)

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

// abortDetail answers with the {"detail": ...} body the client parses
func abortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func currentUser(c *gin.Context) *models.User {
	user, _ := c.MustGet(userKey).(*models.User)
	return user
}

// jwtAuthMiddleware validates the bearer token and loads its user
func (b *Backend) jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			abortDetail(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims, err := b.issuer.ValidateToken(token)
		if err != nil {
			detail := "Could not validate credentials"
			if errors.Is(err, ErrTokenExpired) {
				detail = "token expired"
			}
			b.logger.Debug().Err(err).Msg("Rejected token")
			abortDetail(c, http.StatusUnauthorized, detail)
			return
		}

		// Verify user exists in database
		var user models.User
		if err := b.db.First(&user, claims.UserID).Error; err != nil {
			abortDetail(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		if !user.IsActive {
			abortDetail(c, http.StatusBadRequest, "Inactive user")
			return
		}

		c.Set(userKey, &user)
		c.Next()
	}
}

// adminOnlyMiddleware ensures the authenticated user is an admin
func (b *Backend) adminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).IsAdmin {
			abortDetail(c, http.StatusForbidden, "The user doesn't have enough privileges")
			return
		}
		c.Next()
	}
}

// loggingMiddleware logs every request at debug level
func (b *Backend) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		b.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", c.GetHeader("X-Request-ID")).
			Msg("HTTP request")
	}
}

// faultMiddleware answers every request with a forced status when one is set
func (b *Backend) faultMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		status, detail := b.faultStatus, b.faultDetail
		b.mu.Unlock()

		if status != 0 {
			abortDetail(c, status, detail)
			return
		}
		c.Next()
	}
}
