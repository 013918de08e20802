package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups projects and tasks within a tenant. Names are stored
// trimmed and are unique per tenant.
type Category struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_categories_tenant_name"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	TenantID  uuid.UUID      `json:"tenant_id" gorm:"type:uuid;index;not null;uniqueIndex:idx_categories_tenant_name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
