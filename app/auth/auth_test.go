package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/quill/app/database"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.NoError(t, CheckPassword(hash, "secret123"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), ErrInvalidCredentials)

	_, err = HashPassword("short")
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	principal := Principal{ID: 7, Email: "ann@example.com", Name: "Ann", Role: database.RoleEditor}

	token, err := issuer.Issue(principal)
	require.NoError(t, err)

	verified, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, principal, *verified)
}

func TestVerify_Expired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := issuer.Issue(Principal{ID: 1, Role: database.RoleUser})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("one", time.Hour).Issue(Principal{ID: 1, Role: database.RoleUser})
	require.NoError(t, err)

	_, err = NewTokenIssuer("two", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = NewTokenIssuer("two", time.Hour).Verify("garbage")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

type stubVerifier struct {
	principal *Principal
	err       error
}

func (s stubVerifier) Verify(string) (*Principal, error) {
	return s.principal, s.err
}

func TestResolve(t *testing.T) {
	ann := &Principal{ID: 3, Role: database.RoleUser}

	tests := []struct {
		name     string
		verifier Verifier
		header   string
		want     IdentityState
		userID   *int64
	}{
		{"no header", stubVerifier{principal: ann}, "", Anonymous, nil},
		{"not bearer", stubVerifier{principal: ann}, "Basic abc", Anonymous, nil},
		{"valid", stubVerifier{principal: ann}, "Bearer abc", Authenticated, &ann.ID},
		{"lower-case scheme", stubVerifier{principal: ann}, "bearer abc", Authenticated, &ann.ID},
		{"rejected", stubVerifier{err: errors.New("bad")}, "Bearer abc", Rejected, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := Resolve(tt.verifier, tt.header)
			assert.Equal(t, tt.want, identity.State)
			assert.Equal(t, tt.userID, identity.UserID())
		})
	}
}
