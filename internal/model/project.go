package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project represents a project owned by a tenant. The name is unique within
// the tenant; audit columns record which user created and last updated it.
type Project struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string         `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_projects_tenant_name"`
	StatusState  *string        `json:"status_state,omitempty"`
	ProjectValue *float64       `json:"project_value,omitempty"`
	TargetDate   *time.Time     `json:"target_date,omitempty"`
	CategoryID   *uuid.UUID     `json:"category_id,omitempty" gorm:"type:uuid;index"`
	CreatedBy    uuid.UUID      `json:"created_by" gorm:"type:uuid;not null"`
	UpdatedBy    *uuid.UUID     `json:"updated_by,omitempty" gorm:"type:uuid"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	TenantID     uuid.UUID      `json:"tenant_id" gorm:"type:uuid;index;not null;uniqueIndex:idx_projects_tenant_name"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Tasks []Task `json:"-" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
