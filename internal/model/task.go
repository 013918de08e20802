package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task statuses and priorities.
const (
	TaskStatusToDo       = "to_do"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"

	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// Task represents a unit of work inside a project, scoped to the project's
// tenant.
type Task struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string         `json:"title" gorm:"type:varchar(200);not null"`
	Description *string        `json:"description,omitempty"`
	Status      string         `json:"status" gorm:"type:varchar(20);not null;default:'to_do'"`
	Priority    string         `json:"priority" gorm:"type:varchar(20);not null;default:'medium'"`
	DueDate     *time.Time     `json:"due_date,omitempty"`
	ProjectID   uuid.UUID      `json:"project_id" gorm:"type:uuid;index;not null"`
	CategoryID  *uuid.UUID     `json:"category_id,omitempty" gorm:"type:uuid;index"`
	CreatedBy   uuid.UUID      `json:"created_by" gorm:"type:uuid;not null"`
	UpdatedBy   *uuid.UUID     `json:"updated_by,omitempty" gorm:"type:uuid"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	TenantID    uuid.UUID      `json:"tenant_id" gorm:"type:uuid;index;not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
