package auth

import (
	"errors"
	"testing"
)

func TestResolveActiveTenant(t *testing.T) {
	db := setupTestDB(t)
	created := createTestTenant(t, db, "Acme", "acme-corp", true)

	resolver := NewTenantResolver(db)

	tenant, err := resolver.Resolve("acme-corp")
	if err != nil {
		t.Fatalf("expected resolution to succeed, got %v", err)
	}
	if tenant.ID != created.ID {
		t.Errorf("resolved wrong tenant: got %s, want %s", tenant.ID, created.ID)
	}
}

func TestResolveMissingHeader(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewTenantResolver(db)

	if _, err := resolver.Resolve(""); !errors.Is(err, ErrMissingTenantHeader) {
		t.Errorf("expected ErrMissingTenantHeader, got %v", err)
	}
}

func TestResolveUnknownDomain(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewTenantResolver(db)

	if _, err := resolver.Resolve("nobody-here"); !errors.Is(err, ErrTenantNotFound) {
		t.Errorf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestResolveInactiveTenant(t *testing.T) {
	db := setupTestDB(t)
	createTestTenant(t, db, "Gone", "gone-corp", false)

	resolver := NewTenantResolver(db)

	if _, err := resolver.Resolve("gone-corp"); !errors.Is(err, ErrTenantNotFound) {
		t.Errorf("expected ErrTenantNotFound for inactive tenant, got %v", err)
	}
}

func TestResolveIsExactMatch(t *testing.T) {
	db := setupTestDB(t)
	createTestTenant(t, db, "Acme", "acme-corp", true)

	resolver := NewTenantResolver(db)

	// The header is matched verbatim; normalization happened at registration.
	if _, err := resolver.Resolve("Acme Corp"); !errors.Is(err, ErrTenantNotFound) {
		t.Errorf("expected ErrTenantNotFound for unnormalized header, got %v", err)
	}
}
