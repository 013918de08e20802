package auth

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"qontrolla/internal/model"
)

func TestRequireSuperuser(t *testing.T) {
	admin := &model.User{ID: uuid.New(), IsSuperuser: true}
	regular := &model.User{ID: uuid.New()}

	got, err := RequireSuperuser(admin)
	if err != nil {
		t.Fatalf("expected superuser to pass, got %v", err)
	}
	if got.ID != admin.ID {
		t.Errorf("expected the same user back, got %s", got.ID)
	}

	if _, err := RequireSuperuser(regular); !errors.Is(err, ErrNotSuperuser) {
		t.Errorf("expected ErrNotSuperuser, got %v", err)
	}
}

func TestAuthorizeSelfOrSuperuser(t *testing.T) {
	admin := &model.User{ID: uuid.New(), IsSuperuser: true}
	regular := &model.User{ID: uuid.New()}
	other := uuid.New()

	if ok, err := AuthorizeSelfOrSuperuser(admin, other); !ok || err != nil {
		t.Errorf("superuser should access anyone: ok=%v err=%v", ok, err)
	}

	if ok, err := AuthorizeSelfOrSuperuser(regular, regular.ID); !ok || err != nil {
		t.Errorf("user should access self: ok=%v err=%v", ok, err)
	}

	ok, err := AuthorizeSelfOrSuperuser(regular, other)
	if ok {
		t.Error("regular user must not access another user")
	}
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got %v", err)
	}
}
