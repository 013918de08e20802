package auth

import (
	"errors"
	"testing"

	"qontrolla/internal/model"
	"qontrolla/pkg/hash"
)

func TestRegisterCreatesTenantAndAdmin(t *testing.T) {
	db := setupTestDB(t)
	registrar := NewTenantRegistrar(db)

	tenant, err := registrar.Register("Acme Corp", "Acme Corp", "admin@acme.com", "s3cret")
	if err != nil {
		t.Fatalf("expected registration to succeed, got %v", err)
	}

	if tenant.Domain != "acme-corp" {
		t.Errorf("expected normalized domain acme-corp, got %q", tenant.Domain)
	}
	if !tenant.IsActive {
		t.Error("new tenant should be active")
	}

	var admin model.User
	if err := db.Where("tenant_id = ?", tenant.ID).First(&admin).Error; err != nil {
		t.Fatalf("expected admin user to exist: %v", err)
	}
	if admin.Email != "admin@acme.com" {
		t.Errorf("expected admin email admin@acme.com, got %q", admin.Email)
	}
	if !admin.IsSuperuser {
		t.Error("first user must be a superuser")
	}
	if !admin.IsActive {
		t.Error("first user must be active")
	}
	if admin.Password == "s3cret" {
		t.Error("password must be stored hashed")
	}
	if !hash.Verify("s3cret", admin.Password) {
		t.Error("stored hash should verify against the original password")
	}
}

func TestRegisterDomainTaken(t *testing.T) {
	db := setupTestDB(t)
	registrar := NewTenantRegistrar(db)

	if _, err := registrar.Register("Acme", "acme-corp", "admin@acme.com", "pw"); err != nil {
		t.Fatalf("first registration should succeed: %v", err)
	}

	// Same domain after normalization, different casing and spacing.
	if _, err := registrar.Register("Other", "  Acme Corp ", "other@acme.com", "pw"); !errors.Is(err, ErrDomainTaken) {
		t.Errorf("expected ErrDomainTaken, got %v", err)
	}
}

func TestRegisterIsAtomic(t *testing.T) {
	db := setupTestDB(t)
	registrar := NewTenantRegistrar(db)

	if _, err := registrar.Register("Acme", "acme-corp", "admin@acme.com", "pw"); err != nil {
		t.Fatalf("first registration should succeed: %v", err)
	}

	// Second tenant with a fresh domain but a duplicate admin email. The
	// user insert fails, so the tenant row must be rolled back too.
	if _, err := registrar.Register("Globex", "globex", "admin@acme.com", "pw"); err == nil {
		t.Fatal("expected registration with duplicate admin email to fail")
	}

	var count int64
	if err := db.Model(&model.Tenant{}).Where("domain = ?", "globex").Count(&count).Error; err != nil {
		t.Fatalf("failed to count tenants: %v", err)
	}
	if count != 0 {
		t.Errorf("orphan tenant left behind after failed registration: count=%d", count)
	}
}
