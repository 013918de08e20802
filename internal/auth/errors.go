package auth

import "errors"

// Sentinel errors returned by the authentication pipeline. Handlers and
// middleware map them onto HTTP status codes; the 401-class errors share one
// outward message so callers cannot probe which validation step failed.
var (
	// ErrMissingTenantHeader reports an absent or empty X-Tenant-Domain header.
	ErrMissingTenantHeader = errors.New("X-Tenant-Domain header is required")

	// ErrTenantNotFound reports that no active tenant matches the header value.
	ErrTenantNotFound = errors.New("tenant not found or inactive")

	// ErrUnauthorized is the uniform authentication failure: bad credentials,
	// malformed or expired token, or unknown user.
	ErrUnauthorized = errors.New("could not validate credentials")

	// ErrTenantMismatch reports a well-formed token scoped to a different
	// tenant than the one resolved from the request header.
	ErrTenantMismatch = errors.New("token tenant does not match request tenant")

	// ErrNotSuperuser reports a non-superuser calling a superuser-only
	// operation.
	ErrNotSuperuser = errors.New("the user doesn't have enough privileges")

	// ErrAccessDenied reports a user reaching for another user's resource.
	ErrAccessDenied = errors.New("access denied")

	// ErrDomainTaken reports a registration or update against a domain that
	// already belongs to a tenant.
	ErrDomainTaken = errors.New("domain already in use")
)
