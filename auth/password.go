/*
Package auth handles credentials, tokens, and role checks.

PURPOSE:
  Keeps every security primitive in one place so the API layer only
  deals in verified identities:
  - password.go: bcrypt hashing and verification
  - token.go:    JWT issue/verify (HS256, registered claims only)
  - roles.go:    role allow-lists for endpoint guards

DESIGN PRINCIPLES:
  1. Tokens carry only the user ID; roles are re-read from the store on
     every request so a role change takes effect immediately
  2. Verification failures are indistinguishable to callers - one
     ErrInvalidToken / ErrBadCredentials regardless of cause

SEE ALSO:
  - api/middleware.go: Where tokens are checked per-request
*/
package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrBadCredentials is returned for any password mismatch. Callers must not
// distinguish unknown-user from wrong-password.
var ErrBadCredentials = errors.New("invalid email or password")

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks plaintext against a stored bcrypt hash.
// Returns ErrBadCredentials on mismatch.
func VerifyPassword(hash, plaintext string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)); err != nil {
		return ErrBadCredentials
	}
	return nil
}
