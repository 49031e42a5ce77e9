package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/haroonyaqubi/task-flow-app/internal/auth"
	"github.com/haroonyaqubi/task-flow-app/internal/models"
)

const taskTimeFormat = "02 Jan 2006 15:04"

// TaskResponse is the task representation
type TaskResponse struct {
	ID         uint   `json:"id"`
	Task       string `json:"task"`
	Done       bool   `json:"done"`
	Owner      string `json:"gestionnaire"`
	OwnerID    uint   `json:"gestionnaire_id"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	IsRecent   bool   `json:"is_recent"`
	TaskLength int    `json:"task_length"`
	Status     string `json:"status"`
}

// TaskInput is the writable part of a task. Nil fields are absent.
type TaskInput struct {
	Task *string `json:"task"`
	Done *bool   `json:"done"`
}

func (s *Server) renderTask(t *models.Task) TaskResponse {
	return TaskResponse{
		ID:         t.ID,
		Task:       t.Text,
		Done:       t.Done,
		Owner:      t.Owner.Username,
		OwnerID:    t.OwnerID,
		CreatedAt:  t.CreatedAt.Format(taskTimeFormat),
		UpdatedAt:  t.UpdatedAt.Format(taskTimeFormat),
		IsRecent:   t.IsRecent(s.now()),
		TaskLength: utf8.RuneCountInString(t.Text),
		Status:     t.Status(),
	}
}

// visibleTasks scopes the task query to the session: staff see every task
func (s *Server) visibleTasks(session *auth.SessionData) *gorm.DB {
	query := s.db.Model(&models.Task{}).Order("created_at DESC").Order("id DESC")
	if !session.IsAdmin {
		query = query.Where("owner_id = ?", session.UserID)
	}
	return query
}

// validateTask checks the resulting task state and returns field errors
func validateTask(text string, done bool) fieldErrors {
	errs := fieldErrors{}
	n := utf8.RuneCountInString(text)
	switch {
	case n < 3 && done:
		errs.add("task", "Task must be at least 3 characters to mark as done")
	case n < 3:
		errs.add("task", "Task must be at least 3 characters long")
	case n > 200:
		errs.add("task", "Task cannot exceed 200 characters")
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// loadTask resolves :id within the session's visible tasks, writing 404 if absent
func (s *Server) loadTask(c *gin.Context) (*models.Task, bool) {
	session, _ := GetSessionData(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return nil, false
	}

	var task models.Task
	if err := s.visibleTasks(session).Preload("Owner").Where("tasks.id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to load task")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return nil, false
	}
	return &task, true
}

func (s *Server) listTasks(c *gin.Context) {
	session, _ := GetSessionData(c)

	page, err := paginate(c, s.visibleTasks(session), s.renderTask, "Owner")
	if err != nil {
		if errors.Is(err, errInvalidPage) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Invalid page."})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to list tasks")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, page)
}

func (s *Server) createTask(c *gin.Context) {
	session, _ := GetSessionData(c)

	var input TaskInput
	if !bindJSON(c, &input) {
		return
	}
	if input.Task == nil {
		c.JSON(http.StatusBadRequest, fieldErrors{"task": {"This field is required."}})
		return
	}

	task := models.Task{
		OwnerID: session.UserID,
		Text:    models.NormalizeTaskText(*input.Task),
	}
	if input.Done != nil {
		task.Done = *input.Done
	}
	if errs := validateTask(task.Text, task.Done); errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	if err := s.db.Create(&task).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create task")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create task"})
		return
	}
	task.Owner = models.User{ID: session.UserID, Username: session.Username}

	s.logger.Info().Uint("task_id", task.ID).Uint("user_id", session.UserID).Msg("Task created")
	c.JSON(http.StatusCreated, s.renderTask(&task))
}

func (s *Server) getTask(c *gin.Context) {
	task, ok := s.loadTask(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.renderTask(task))
}

func (s *Server) replaceTask(c *gin.Context) {
	s.updateTask(c, false)
}

func (s *Server) patchTask(c *gin.Context) {
	s.updateTask(c, true)
}

func (s *Server) updateTask(c *gin.Context, partial bool) {
	task, ok := s.loadTask(c)
	if !ok {
		return
	}

	var input TaskInput
	if !bindJSON(c, &input) {
		return
	}
	if input.Task == nil && !partial {
		c.JSON(http.StatusBadRequest, fieldErrors{"task": {"This field is required."}})
		return
	}

	if input.Task != nil {
		task.Text = models.NormalizeTaskText(*input.Task)
	}
	if input.Done != nil {
		task.Done = *input.Done
	} else if !partial {
		task.Done = false
	}
	if errs := validateTask(task.Text, task.Done); errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	if err := s.saveTask(task); err != nil {
		s.logger.Error().Err(err).Uint("task_id", task.ID).Msg("Failed to update task")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to update task"})
		return
	}

	c.JSON(http.StatusOK, s.renderTask(task))
}

func (s *Server) deleteTask(c *gin.Context) {
	task, ok := s.loadTask(c)
	if !ok {
		return
	}

	if err := s.db.Delete(&models.Task{}, task.ID).Error; err != nil {
		s.logger.Error().Err(err).Uint("task_id", task.ID).Msg("Failed to delete task")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to delete task"})
		return
	}

	session, _ := GetSessionData(c)
	s.logger.Info().Uint("task_id", task.ID).Uint("deleted_by", session.UserID).Msg("Task deleted")
	c.Status(http.StatusNoContent)
}

func (s *Server) markTaskComplete(c *gin.Context) {
	s.setTaskDone(c, true, "Tâche terminée")
}

func (s *Server) markTaskPending(c *gin.Context) {
	s.setTaskDone(c, false, "Tâche en attente")
}

func (s *Server) setTaskDone(c *gin.Context, done bool, status string) {
	task, ok := s.loadTask(c)
	if !ok {
		return
	}

	task.Done = done
	if err := s.saveTask(task); err != nil {
		s.logger.Error().Err(err).Uint("task_id", task.ID).Msg("Failed to update task status")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to update task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// saveTask persists text and done, updating updated_at
func (s *Server) saveTask(task *models.Task) error {
	task.UpdatedAt = time.Now()
	return s.db.Model(&models.Task{}).Where("id = ?", task.ID).Updates(map[string]any{
		"task":       task.Text,
		"done":       task.Done,
		"updated_at": task.UpdatedAt,
	}).Error
}
