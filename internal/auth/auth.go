// package auth validates bearer tokens and exposes the authenticated
// principal to handlers as a typed value. Token issuance is handled by the
// campus SSO; this service only verifies.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aegis-campus/aegis/internal/apperrors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent   Role = "student"
	RoleAuthority Role = "authority"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAuthority, RoleAdmin:
		return true
	}

	return false
}

// Principal is the authenticated caller identity carried through request
// context. Handlers never read identity from anything else.
type Principal struct {
	ID   string
	Role Role
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService verifies HS256 access tokens and extracts the principal.
type TokenService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewTokenService(signingKey, issuer, audience string) *TokenService {
	return &TokenService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateToken signs a token for the given principal. The service itself
// never calls this in request handling; it exists for tests and tooling.
func (s *TokenService) GenerateToken(p Principal, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	return token.SignedString(s.signingKey)
}

// ValidateToken parses and verifies a token string, returning the principal
// it carries. All failures map to ErrUnauthenticated.
func (s *TokenService) ValidateToken(tokenString string) (*Principal, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token has expired", apperrors.ErrUnauthenticated)
		}

		return nil, fmt.Errorf("%w: invalid token", apperrors.ErrUnauthenticated)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", apperrors.ErrUnauthenticated)
	}

	role := Role(claims.Role)
	if claims.Subject == "" || !role.Valid() {
		return nil, fmt.Errorf("%w: malformed principal claims", apperrors.ErrUnauthenticated)
	}

	return &Principal{ID: claims.Subject, Role: role}, nil
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying the principal. Only the auth
// middleware should call this.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the authenticated principal, or
// ErrUnauthenticated if the request never passed the auth middleware.
func PrincipalFromContext(ctx context.Context) (*Principal, error) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	if !ok || p == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	return p, nil
}
