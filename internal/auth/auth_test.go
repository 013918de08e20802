package auth

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"qontrolla/internal/model"
	"qontrolla/pkg/hash"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Tenant{},
		&model.User{},
		&model.Client{},
		&model.Category{},
		&model.Project{},
		&model.Task{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestTenant(t *testing.T, db *gorm.DB, name, domain string, active bool) *model.Tenant {
	t.Helper()

	tenant := model.Tenant{Name: name, Domain: domain, IsActive: active}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("failed to create tenant %s: %v", domain, err)
	}
	// The column default wins over an explicit false at create time.
	if !active {
		if err := db.Model(&tenant).Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate tenant %s: %v", domain, err)
		}
	}
	return &tenant
}

func createTestUser(t *testing.T, db *gorm.DB, tenant *model.Tenant, email, password string, superuser, active bool) *model.User {
	t.Helper()

	hashed, err := hash.Password(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := model.User{
		Email:       email,
		Password:    hashed,
		IsSuperuser: superuser,
		IsActive:    active,
		TenantID:    tenant.ID,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	if !active {
		if err := db.Model(&user).Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate user %s: %v", email, err)
		}
	}
	return &user
}
