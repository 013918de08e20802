package auth

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"qontrolla/internal/model"
	"qontrolla/pkg/jwtutil"
)

// Authenticator validates bearer tokens against a resolved tenant and yields
// the acting user. It performs no writes and never retries.
type Authenticator struct {
	db    *gorm.DB
	codec *jwtutil.TokenCodec
}

// NewAuthenticator creates an authenticator from the database and the token
// codec.
func NewAuthenticator(db *gorm.DB, codec *jwtutil.TokenCodec) *Authenticator {
	return &Authenticator{db: db, codec: codec}
}

// Authenticate resolves the acting user for a bearer token presented against
// a tenant. Decode failures, missing claims and unknown users all collapse
// into ErrUnauthorized; a token scoped to a different tenant yields
// ErrTenantMismatch, which is a 403-class condition since the credential
// itself is well formed.
func (a *Authenticator) Authenticate(tenant *model.Tenant, bearerToken string) (*model.User, error) {
	claims, err := a.codec.Parse(bearerToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	if claims.Subject == "" || claims.TenantID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	if claims.TenantID != tenant.ID {
		return nil, ErrTenantMismatch
	}

	var user model.User
	err = a.db.Where("email = ? AND tenant_id = ? AND is_active = ?",
		claims.Subject, tenant.ID, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	return &user, nil
}
