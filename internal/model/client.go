package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Identifier types accepted for clients.
const (
	IdentifierCPF  = "cpf"
	IdentifierCNPJ = "cnpj"
)

// Client represents a billing client owned by a tenant. The fiscal
// identifier is unique within the tenant.
type Client struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name           string         `json:"name" gorm:"type:varchar(100);not null"`
	ClientType     string         `json:"client_type" gorm:"type:varchar(50);not null"`
	TypeIdentifier string         `json:"type_identifier" gorm:"type:varchar(10);not null"`
	Identifier     string         `json:"identifier" gorm:"type:varchar(50);not null;uniqueIndex:idx_clients_tenant_identifier"`
	IsActive       bool           `json:"is_active" gorm:"default:true"`
	TenantID       uuid.UUID      `json:"tenant_id" gorm:"type:uuid;index;not null;uniqueIndex:idx_clients_tenant_identifier"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
