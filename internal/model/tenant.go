package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant represents an isolated customer organization. All business data is
// partitioned by tenant id; deleting a tenant cascades to its resources.
type Tenant struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Domain    string         `json:"domain" gorm:"type:varchar(100);uniqueIndex;not null"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Users      []User     `json:"-" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
	Clients    []Client   `json:"-" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
	Projects   []Project  `json:"-" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
	Categories []Category `json:"-" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
	Tasks      []Task     `json:"-" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// NormalizeDomain lower-cases a domain, trims surrounding whitespace and
// replaces inner spaces with hyphens. Domains are normalized before storage
// and before every uniqueness comparison.
func NormalizeDomain(domain string) string {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToLower(domain)), " ", "-")
}
