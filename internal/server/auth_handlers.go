package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/haroonyaqubi/task-flow-app/internal/auth"
	"github.com/haroonyaqubi/task-flow-app/internal/models"
)

// TokenObtainRequest represents a login request
type TokenObtainRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenPairResponse is returned by a successful login
type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// AccessResponse is returned by a successful refresh
type AccessResponse struct {
	Access string `json:"access"`
}

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Username       string `json:"username" validate:"required,max=150"`
	FirstName      string `json:"first_name" validate:"max=150"`
	LastName       string `json:"last_name" validate:"max=150"`
	Email          string `json:"email" validate:"omitempty,email"`
	Password       string `json:"password" validate:"required"`
	PrivacyConsent bool   `json:"consentement_rgpd"`
}

// RegisterResponse echoes the created account
type RegisterResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// ProfileResponse is the current-user representation
type ProfileResponse struct {
	Username  string `json:"nom_utilisateur"`
	Email     string `json:"email"`
	FirstName string `json:"prenom"`
	LastName  string `json:"nom"`
	IsAdmin   bool   `json:"est_admin"`
}

var (
	errInvalidCredentials = gin.H{"detail": "No active account found with the given credentials"}
	errTokenNotValid      = gin.H{"detail": "Token is invalid or expired", "code": "token_not_valid"}
)

// bindJSON decodes the body and writes a 400 on malformed JSON
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
		return false
	}
	return true
}

func (s *Server) obtainToken(c *gin.Context) {
	var req TokenObtainRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := s.validateStruct(&req, nil); errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	var user models.User
	if err := s.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, errInvalidCredentials)
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	if !user.IsActive || auth.VerifyPassword(req.Password, user.PasswordHash) != nil {
		c.JSON(http.StatusUnauthorized, errInvalidCredentials)
		return
	}

	access, err := s.issuer.GenerateAccessToken(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate access token")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to generate token"})
		return
	}
	refresh, err := s.issuer.GenerateRefreshToken(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate refresh token")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to generate token"})
		return
	}

	s.logger.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("User logged in")

	c.JSON(http.StatusOK, TokenPairResponse{Access: access, Refresh: refresh})
}

// validRefreshClaims validates a refresh token and checks it is neither
// revoked nor owned by a deactivated user
func (s *Server) validRefreshClaims(token string) (*auth.JWTClaims, bool) {
	claims, err := s.issuer.ValidateToken(token, auth.TokenTypeRefresh)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Refresh token rejected")
		return nil, false
	}

	var revoked int64
	if err := s.db.Model(&models.RevokedToken{}).Where("jti = ?", claims.ID).Count(&revoked).Error; err != nil || revoked > 0 {
		return nil, false
	}

	var user models.User
	if err := models.FindByID(s.db, claims.UserID, &user); err != nil || !user.IsActive {
		return nil, false
	}
	return claims, true
}

func (s *Server) refreshToken(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := s.validateStruct(&req, nil); errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	claims, ok := s.validRefreshClaims(req.Refresh)
	if !ok {
		c.JSON(http.StatusUnauthorized, errTokenNotValid)
		return
	}

	access, err := s.issuer.GenerateAccessToken(claims.UserID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate access token")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AccessResponse{Access: access})
}

func (s *Server) blacklistToken(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := s.validateStruct(&req, nil); errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	claims, ok := s.validRefreshClaims(req.Refresh)
	if !ok {
		c.JSON(http.StatusUnauthorized, errTokenNotValid)
		return
	}

	expiresAt := s.now().Add(s.issuer.RefreshLifetime())
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	revoked := models.RevokedToken{JTI: claims.ID, UserID: claims.UserID, ExpiresAt: expiresAt.UTC()}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&revoked).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to revoke refresh token")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	s.logger.Info().Uint("user_id", claims.UserID).Str("jti", claims.ID).Msg("Refresh token revoked")
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	if !req.PrivacyConsent {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You must accept the privacy policy."})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	errs := s.validateStruct(&req, nil)
	if errs == nil {
		errs = fieldErrors{}
	}
	if req.Username != "" {
		var count int64
		if err := s.db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to check username")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
			return
		}
		if count > 0 {
			errs.add("username", "A user with that username already exists.")
		}
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create user"})
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create user"})
		return
	}

	s.logger.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("User registered")

	c.JSON(http.StatusCreated, RegisterResponse{
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	})
}

func (s *Server) getCurrentUser(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var user models.User
	if err := models.FindByID(s.db, sessionData.UserID, &user); err != nil {
		s.logger.Error().Err(err).Uint("user_id", sessionData.UserID).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsAdmin:   user.IsStaff,
	})
}
