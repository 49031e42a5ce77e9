package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/haroonyaqubi/task-flow-app/internal/jobs"
	"github.com/haroonyaqubi/task-flow-app/internal/models"
)

// ContactRequest is a contact form submission
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100,lettersandspaces"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,min=5,max=200"`
	Message string `json:"message" validate:"required,min=10,max=2000"`
}

var contactMessages = map[string]string{
	"name.lettersandspaces": "Name can only contain letters and spaces.",
	"name.min":              "Name must be at least 2 characters long.",
	"subject.min":           "Subject must be at least 5 characters long.",
	"message.min":           "Message must be at least 10 characters long.",
}

func (s *Server) submitContact(c *gin.Context) {
	var req ContactRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	if errs := s.validateStruct(&req, contactMessages); errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	msg := models.ContactMessage{
		Name:    titleCase(req.Name),
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to store contact message")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while sending your message."})
		return
	}

	task, err := jobs.NewDeliverContactMessageTask(msg.ID)
	if err == nil {
		_, err = s.enqueuer.EnqueueContext(c.Request.Context(), task, asynq.TaskID(msg.ID))
	}
	if err != nil {
		s.logger.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to enqueue contact delivery")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while sending your message."})
		return
	}

	s.logger.Info().Str("message_id", msg.ID).Str("email", msg.Email).Msg("Contact message accepted")
	c.JSON(http.StatusOK, gin.H{
		"success":   "Message envoyé avec succès!",
		"reference": msg.ID,
	})
}
