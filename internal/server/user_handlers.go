package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/haroonyaqubi/task-flow-app/internal/auth"
	"github.com/haroonyaqubi/task-flow-app/internal/models"
)

// UserResponse is the admin view of an account
type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	IsStaff   bool   `json:"is_staff"`
	IsActive  bool   `json:"is_active"`
}

// UserInput is the writable part of an account. Nil fields are absent.
type UserInput struct {
	Username  *string `json:"username" validate:"omitempty,min=1,max=150"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Password  *string `json:"password" validate:"omitempty,min=1"`
	IsStaff   *bool   `json:"is_staff"`
	IsActive  *bool   `json:"is_active"`
}

func renderUser(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		IsStaff:   u.IsStaff,
		IsActive:  u.IsActive,
	}
}

func (s *Server) listUsers(c *gin.Context) {
	query := s.db.Model(&models.User{}).Order("id ASC")
	page, err := paginate(c, query, renderUser)
	if err != nil {
		if errors.Is(err, errInvalidPage) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Invalid page."})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// usernameTaken reports whether another account already uses username
func (s *Server) usernameTaken(username string, exceptID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&count).Error
	return count > 0, err
}

func (s *Server) createUser(c *gin.Context) {
	var input UserInput
	if !bindJSON(c, &input) {
		return
	}
	if input.Username != nil {
		trimmed := strings.TrimSpace(*input.Username)
		input.Username = &trimmed
	}

	errs := s.validateStruct(&input, nil)
	if errs == nil {
		errs = fieldErrors{}
	}
	if input.Username == nil || *input.Username == "" {
		errs["username"] = []string{"This field is required."}
	} else {
		taken, err := s.usernameTaken(*input.Username, 0)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to check username")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
			return
		}
		if taken {
			errs.add("username", "A user with that username already exists.")
		}
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	user := models.User{Username: *input.Username, IsActive: true}
	if err := s.applyUserInput(&user, &input); err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create user"})
		return
	}
	if user.PasswordHash == "" {
		// Accounts created without a password cannot log in until one is set
		user.PasswordHash = "!"
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		// is_active defaults to true at the column level, so false has to be written explicitly
		if !user.IsActive {
			return tx.Model(&user).Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create user"})
		return
	}

	session, _ := GetSessionData(c)
	s.logger.Info().Uint("user_id", user.ID).Uint("created_by", session.UserID).Msg("User created by admin")
	c.JSON(http.StatusCreated, renderUser(&user))
}

// loadUser resolves :id, writing 404 if absent
func (s *Server) loadUser(c *gin.Context) (*models.User, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return nil, false
	}

	var user models.User
	if err := models.FindByID(s.db, id, &user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to load user")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return nil, false
	}
	return &user, true
}

func (s *Server) getUser(c *gin.Context) {
	user, ok := s.loadUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, renderUser(user))
}

func (s *Server) updateUser(c *gin.Context) {
	user, ok := s.loadUser(c)
	if !ok {
		return
	}

	var input UserInput
	if !bindJSON(c, &input) {
		return
	}
	if input.Username != nil {
		trimmed := strings.TrimSpace(*input.Username)
		input.Username = &trimmed
	}

	errs := s.validateStruct(&input, nil)
	if errs == nil {
		errs = fieldErrors{}
	}
	if c.Request.Method == http.MethodPut && input.Username == nil {
		errs["username"] = []string{"This field is required."}
	}
	if input.Username != nil && *input.Username != "" {
		taken, err := s.usernameTaken(*input.Username, user.ID)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to check username")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
			return
		}
		if taken {
			errs.add("username", "A user with that username already exists.")
		}
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	if err := s.applyUserInput(user, &input); err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to update user"})
		return
	}

	if err := s.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"username":      user.Username,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"is_staff":      user.IsStaff,
		"is_active":     user.IsActive,
	}).Error; err != nil {
		s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("Failed to update user")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, renderUser(user))
}

func (s *Server) deleteUser(c *gin.Context) {
	user, ok := s.loadUser(c)
	if !ok {
		return
	}

	session, _ := GetSessionData(c)
	if user.ID == session.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "You cannot delete your own account."})
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", user.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, user.ID).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("Failed to delete user")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to delete user"})
		return
	}

	s.logger.Info().Uint("user_id", user.ID).Uint("deleted_by", session.UserID).Msg("User deleted")
	c.Status(http.StatusNoContent)
}

// applyUserInput copies the present fields of input onto user
func (s *Server) applyUserInput(user *models.User, input *UserInput) error {
	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.IsStaff != nil {
		user.IsStaff = *input.IsStaff
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}
	return nil
}
