package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a user account within a tenant. Email is globally unique
// across tenants even though most lookups additionally filter by tenant id.
// Users are soft-deleted by flipping IsActive to false.
type User struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Email       string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password    string         `json:"-" gorm:"type:varchar(255);not null"`
	FullName    *string        `json:"full_name,omitempty"`
	IsSuperuser bool           `json:"is_superuser" gorm:"default:false"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	TenantID    uuid.UUID      `json:"tenant_id" gorm:"type:uuid;index;not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
