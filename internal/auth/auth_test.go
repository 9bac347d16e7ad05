package auth

import (
	"context"
	"testing"
	"time"

	"github.com/aegis-campus/aegis/internal/apperrors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSigningKey = "test-signing-key"
	testIssuer     = "aegis"
	testAudience   = "aegis-campus"
)

func newTestService() *TokenService {
	return NewTokenService(testSigningKey, testIssuer, testAudience)
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc := newTestService()

	testCases := []struct {
		name      string
		principal Principal
	}{
		{name: "student", principal: Principal{ID: "stud-1", Role: RoleStudent}},
		{name: "authority", principal: Principal{ID: "auth-1", Role: RoleAuthority}},
		{name: "admin", principal: Principal{ID: "admin-1", Role: RoleAdmin}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := svc.GenerateToken(tc.principal, time.Hour)
			require.NoError(t, err)

			p, err := svc.ValidateToken(token)
			require.NoError(t, err)
			assert.Equal(t, tc.principal, *p)
		})
	}
}

func TestTokenService_ValidateToken_Failures(t *testing.T) {
	svc := newTestService()

	t.Run("expired token", func(t *testing.T) {
		token, err := svc.GenerateToken(Principal{ID: "auth-1", Role: RoleAuthority}, -time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewTokenService("different-key", testIssuer, testAudience)

		token, err := other.GenerateToken(Principal{ID: "auth-1", Role: RoleAuthority}, time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewTokenService(testSigningKey, "someone-else", testAudience)

		token, err := other.GenerateToken(Principal{ID: "auth-1", Role: RoleAuthority}, time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other := NewTokenService(testSigningKey, testIssuer, "another-service")

		token, err := other.GenerateToken(Principal{ID: "auth-1", Role: RoleAuthority}, time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("unknown role claim", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			Role: "superuser",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "auth-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				Issuer:    testIssuer,
				Audience:  []string{testAudience},
			},
		})

		signed, err := token.SignedString([]byte(testSigningKey))
		require.NoError(t, err)

		_, err = svc.ValidateToken(signed)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("missing subject", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			Role: string(RoleAuthority),
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				Issuer:    testIssuer,
				Audience:  []string{testAudience},
			},
		})

		signed, err := token.SignedString([]byte(testSigningKey))
		require.NoError(t, err)

		_, err = svc.ValidateToken(signed)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})
}

func TestPrincipalFromContext(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		p := &Principal{ID: "auth-1", Role: RoleAuthority}

		ctx := WithPrincipal(context.Background(), p)

		got, err := PrincipalFromContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("missing principal", func(t *testing.T) {
		_, err := PrincipalFromContext(context.Background())
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleStudent.Valid())
	assert.True(t, RoleAuthority.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}
