package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	in := Session{UserID: "u-1", Role: RoleSalonAdmin, Email: "owner@example.com"}

	raw, err := IssueToken(in, "secret", time.Hour)
	require.NoError(t, err)

	out, err := ParseToken(raw, "secret")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParseToken_Rejects(t *testing.T) {
	good, err := IssueToken(Session{UserID: "u-1", Role: RoleCustomer}, "secret", time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(Session{UserID: "u-1", Role: RoleCustomer}, "secret", -time.Minute)
	require.NoError(t, err)
	badRole, err := IssueToken(Session{UserID: "u-1", Role: Role("janitor")}, "secret", time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: "customer"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]struct {
		raw    string
		secret string
	}{
		"wrong secret": {good, "other"},
		"empty secret": {good, ""},
		"expired":      {expired, "secret"},
		"unknown role": {badRole, "secret"},
		"alg none":     {none, "secret"},
		"garbage":      {"not-a-jwt", "secret"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(tc.raw, tc.secret)
			assert.ErrorIs(t, err, ErrBadToken)
		})
	}
}

func TestPermissions(t *testing.T) {
	owner := Session{UserID: "owner", Role: RoleSalonAdmin}
	otherAdmin := Session{UserID: "someone", Role: RoleSalonAdmin}
	super := Session{UserID: "root", Role: RoleSuperAdmin}
	customer := Session{UserID: "c1", Role: RoleCustomer}

	assert.True(t, owner.CanManageSalon("owner"))
	assert.False(t, otherAdmin.CanManageSalon("owner"))
	assert.True(t, super.CanManageSalon("owner"))
	assert.False(t, customer.CanManageSalon("owner"))
	assert.False(t, Guest().CanManageSalon(""))

	assert.True(t, customer.CanViewCustomer("c1"))
	assert.False(t, customer.CanViewCustomer("c2"))
	assert.True(t, super.CanViewCustomer("c2"))
	assert.False(t, Guest().CanViewCustomer(""))
}

func TestContext(t *testing.T) {
	assert.False(t, FromContext(context.Background()).Authenticated())

	s := Session{UserID: "u", Role: RoleCustomer}
	assert.Equal(t, s, FromContext(WithSession(context.Background(), s)))
}
