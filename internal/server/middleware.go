package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/haroonyaqubi/task-flow-app/internal/auth"
	"github.com/haroonyaqubi/task-flow-app/internal/models"
)

const (
	bearerPrefix = "Bearer "
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrUserNotFound      = errors.New("user not found")
)

func setSession(c *gin.Context, sessionData *auth.SessionData) {
	c.Set("session", sessionData)
}

func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	session, exists := c.Get("session")
	if !exists {
		return nil, false
	}

	sessionData, ok := session.(*auth.SessionData)
	return sessionData, ok
}

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

func respondWithError(c *gin.Context, log zerolog.Logger, statusCode int, err error, body gin.H) {
	log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("Request rejected")
	c.AbortWithStatusJSON(statusCode, body)
}

// JWTAuthMiddleware validates access tokens and loads the session user
func JWTAuthMiddleware(issuer *auth.Issuer, db *gorm.DB, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			respondWithError(c, log, http.StatusUnauthorized, err, gin.H{
				"detail": "Authentication credentials were not provided.",
			})
			return
		}

		claims, err := issuer.ValidateToken(token, auth.TokenTypeAccess)
		if err != nil {
			respondWithError(c, log, http.StatusUnauthorized, errors.Join(ErrInvalidToken, err), gin.H{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
			return
		}

		var user models.User
		if err := models.FindByID(db, claims.UserID, &user); err != nil || !user.IsActive {
			respondWithError(c, log, http.StatusUnauthorized, ErrUserNotFound, gin.H{
				"detail": "User not found",
				"code":   "user_not_found",
			})
			return
		}

		setSession(c, &auth.SessionData{
			UserID:   user.ID,
			Username: user.Username,
			IsAdmin:  user.IsStaff,
		})

		c.Next()
	}
}

// AdminOnlyMiddleware ensures the authenticated user is staff
func AdminOnlyMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionData, exists := GetSessionData(c)
		if !exists {
			respondWithError(c, log, http.StatusUnauthorized, errors.New("no session"), gin.H{
				"detail": "Authentication credentials were not provided.",
			})
			return
		}

		if !sessionData.IsAdmin {
			respondWithError(c, log, http.StatusForbidden, errors.New("not admin"), gin.H{
				"detail": "You do not have permission to perform this action.",
			})
			return
		}

		c.Next()
	}
}
