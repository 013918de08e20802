package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"qontrolla/internal/model"
	"qontrolla/pkg/hash"
)

// TenantRegistrar onboards a new tenant together with its first admin user
// as one atomic unit of work.
type TenantRegistrar struct {
	db *gorm.DB
}

// NewTenantRegistrar creates a registrar backed by the given database.
func NewTenantRegistrar(db *gorm.DB) *TenantRegistrar {
	return &TenantRegistrar{db: db}
}

// Register normalizes the domain, then creates the tenant and its first
// superuser inside a single transaction. Both rows succeed or fail
// together; a tenant without its admin is never observable. A uniqueness
// violation surfaced at any point maps to ErrDomainTaken.
func (r *TenantRegistrar) Register(name, domain, adminEmail, adminPassword string) (*model.Tenant, error) {
	normalized := model.NormalizeDomain(domain)

	var existing model.Tenant
	err := r.db.Where("domain = ?", normalized).First(&existing).Error
	if err == nil {
		return nil, ErrDomainTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking domain availability: %w", err)
	}

	hashedPassword, err := hash.Password(adminPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing admin password: %w", err)
	}

	tenant := model.Tenant{
		Name:     name,
		Domain:   normalized,
		IsActive: true,
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}

		admin := model.User{
			Email:       adminEmail,
			Password:    hashedPassword,
			IsSuperuser: true,
			IsActive:    true,
			TenantID:    tenant.ID,
		}

		return tx.Create(&admin).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDomainTaken
		}
		return nil, fmt.Errorf("registering tenant: %w", err)
	}

	return &tenant, nil
}
