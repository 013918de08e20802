package auth

import (
	"github.com/google/uuid"

	"qontrolla/internal/model"
)

// RequireSuperuser passes the user through when it carries the superuser
// flag and fails with ErrNotSuperuser otherwise.
func RequireSuperuser(user *model.User) (*model.User, error) {
	if !user.IsSuperuser {
		return nil, ErrNotSuperuser
	}
	return user, nil
}

// AuthorizeSelfOrSuperuser reports whether the acting user may touch the
// resource of the target user: superusers always may, everyone else only
// their own. Any endpoint exposing another user's resource by id must call
// this.
func AuthorizeSelfOrSuperuser(actingUser *model.User, targetUserID uuid.UUID) (bool, error) {
	if actingUser.IsSuperuser || actingUser.ID == targetUserID {
		return true, nil
	}
	return false, ErrAccessDenied
}
