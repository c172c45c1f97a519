package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waqtek/hr-ledger/auth"
	"github.com/waqtek/hr-ledger/ledger"
)

// =============================================================================
// PASSWORDS
// =============================================================================

func TestPassword_RoundTrip(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.NoError(t, auth.VerifyPassword(hash, "s3cret"))
	assert.ErrorIs(t, auth.VerifyPassword(hash, "wrong"), auth.ErrBadCredentials)
}

// =============================================================================
// TOKENS
// =============================================================================

func TestToken_RoundTrip(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("user-1")
	require.NoError(t, err)

	subject, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)
}

func TestToken_WrongSecret_Rejected(t *testing.T) {
	token, err := auth.NewTokenIssuer("secret-a", time.Hour).Issue("user-1")
	require.NoError(t, err)

	_, err = auth.NewTokenIssuer("secret-b", time.Hour).Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestToken_Expired_Rejected(t *testing.T) {
	// A negative TTL produces an already-expired token.
	issuer := auth.NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue("user-1")
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestToken_Garbage_Rejected(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := issuer.Verify(tok)
		assert.ErrorIs(t, err, auth.ErrInvalidToken, "token %q", tok)
	}
}

// =============================================================================
// ROLES
// =============================================================================

func TestAllowed(t *testing.T) {
	assert.True(t, auth.Allowed(ledger.RoleAdmin, ledger.RoleAdmin, ledger.RoleHR))
	assert.True(t, auth.Allowed(ledger.RoleHR, ledger.RoleAdmin, ledger.RoleHR))
	assert.False(t, auth.Allowed(ledger.RoleEmployee, ledger.RoleAdmin, ledger.RoleHR))
	assert.False(t, auth.Allowed(ledger.RoleManager))
}

func TestCanAssignRole(t *testing.T) {
	// Admins assign anything.
	for _, target := range []ledger.Role{ledger.RoleAdmin, ledger.RoleHR, ledger.RoleManager, ledger.RoleEmployee} {
		assert.True(t, auth.CanAssignRole(ledger.RoleAdmin, target), "admin -> %s", target)
	}

	// HR assigns regular staff roles only.
	assert.True(t, auth.CanAssignRole(ledger.RoleHR, ledger.RoleEmployee))
	assert.True(t, auth.CanAssignRole(ledger.RoleHR, ledger.RoleManager))
	assert.False(t, auth.CanAssignRole(ledger.RoleHR, ledger.RoleHR))
	assert.False(t, auth.CanAssignRole(ledger.RoleHR, ledger.RoleAdmin))

	// Everyone else assigns nothing.
	assert.False(t, auth.CanAssignRole(ledger.RoleManager, ledger.RoleEmployee))
	assert.False(t, auth.CanAssignRole(ledger.RoleEmployee, ledger.RoleEmployee))
}
