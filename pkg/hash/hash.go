package hash

import "golang.org/x/crypto/bcrypt"

// Password hashes a plaintext password with bcrypt. The resulting hash is
// opaque to callers; only Verify can interpret it.
func Password(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether the plaintext matches a previously hashed password.
func Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
