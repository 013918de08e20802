package auth

import (
	"errors"

	"gorm.io/gorm"

	"qontrolla/internal/model"
)

// TenantResolver maps an inbound domain identifier to an active tenant
// record. Resolution is a read-only single-row lookup.
type TenantResolver struct {
	db *gorm.DB
}

// NewTenantResolver creates a tenant resolver backed by the given database.
func NewTenantResolver(db *gorm.DB) *TenantResolver {
	return &TenantResolver{db: db}
}

// Resolve looks up the active tenant whose domain equals the header value
// exactly. Normalization happens at registration time, not here. An absent
// or empty header yields ErrMissingTenantHeader; no matching active tenant
// yields ErrTenantNotFound.
func (r *TenantResolver) Resolve(domain string) (*model.Tenant, error) {
	if domain == "" {
		return nil, ErrMissingTenantHeader
	}

	var tenant model.Tenant
	err := r.db.Where("domain = ? AND is_active = ?", domain, true).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	return &tenant, nil
}
