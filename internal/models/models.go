package models

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides a ULID primary key for records that are not exposed
// through integer routes (configuration, contact messages)
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// Config represents the global server configuration.
// This is a singleton model (only one row should exist)
type Config struct {
	BaseModel
	JWTSecret string `json:"-" gorm:"type:varchar(64);not null"` // Generated on first start (64 hex chars)
}

// User represents an account. Tasks and users keep integer identifiers so the
// routes stay compatible with existing clients (tasks/{id}/, user/users/{id}/).
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null;size:150"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-" gorm:"not null"`
	IsStaff      bool      `json:"is_staff" gorm:"not null;default:false"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Task is a single to-do item owned by a user
type Task struct {
	ID        uint      `gorm:"primaryKey"`
	OwnerID   uint      `gorm:"not null;index:idx_tasks_owner_done"`
	Text      string    `gorm:"column:task;size:200;not null"`
	Done      bool      `gorm:"not null;default:false;index:idx_tasks_owner_done;index"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	// Relationships
	Owner User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
}

// Status returns the human-readable task status
func (t *Task) Status() string {
	if t.Done {
		return "Completed"
	}
	return "Pending"
}

// IsRecent reports whether the task was created within the last 24 hours
func (t *Task) IsRecent(now time.Time) bool {
	return now.Sub(t.CreatedAt) < 24*time.Hour
}

// ContactMessage is a submitted contact form, kept until delivered
type ContactMessage struct {
	BaseModel
	Name        string     `json:"name" gorm:"not null"`
	Email       string     `json:"email" gorm:"not null"`
	Subject     string     `json:"subject" gorm:"not null"`
	Message     string     `json:"message" gorm:"type:text;not null"`
	DeliveredAt *time.Time `json:"delivered_at"`
}

// RevokedToken records a refresh token that can no longer be exchanged.
// Rows are purged once the token would have expired anyway.
type RevokedToken struct {
	JTI       string    `gorm:"primaryKey;type:varchar(26)"`
	UserID    uint      `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&Config{}, &User{}, &Task{}, &ContactMessage{}, &RevokedToken{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by primary key
func FindByID[T any](db *gorm.DB, id any, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// FindByIDWithPreload finds a record by primary key with preloading
func FindByIDWithPreload[T any](db *gorm.DB, id any, model *T, preloads ...string) error {
	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	return query.Where("id = ?", id).First(model).Error
}

// NormalizeTaskText trims surrounding whitespace from task text
func NormalizeTaskText(text string) string {
	return strings.TrimSpace(text)
}
