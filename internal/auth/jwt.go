package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
)

// ErrInvalidToken covers every reason a token is rejected.
var ErrInvalidToken = errors.New("invalid token")

// TokenType separates access, refresh and pending two-factor tokens so one cannot stand in for another.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
	TokenMFA     TokenType = "mfa"
)

// Claims represents JWT claims. Permissions are embedded at login time.
type Claims struct {
	UserID      string           `json:"uid"`
	TenantID    string           `json:"tid,omitempty"`
	Kind        tenant.ActorKind `json:"kind"`
	Role        string           `json:"role,omitempty"`
	Permissions []string         `json:"perms,omitempty"`
	SuperAdmin  bool             `json:"sa,omitempty"`
	Type        TokenType        `json:"typ"`
	jwt.RegisteredClaims
}

// Actor converts the claims into the request principal.
func (c *Claims) Actor() tenant.Actor {
	return tenant.Actor{
		UserID:      c.UserID,
		TenantID:    c.TenantID,
		Kind:        c.Kind,
		Role:        c.Role,
		Permissions: c.Permissions,
		SuperAdmin:  c.SuperAdmin,
	}
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewIssuer creates an Issuer for the given secret and iss claim.
func NewIssuer(secret, issuer string) *Issuer {
	return &Issuer{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Issue signs a token of the given type. The subject fields of c are copied;
// registered claims are filled in here.
func (i *Issuer) Issue(c Claims, typ TokenType, ttl time.Duration) (string, *Claims, error) {
	now := i.now()
	c.Type = typ
	c.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    i.issuer,
		Subject:   c.UserID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &c).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, &c, nil
}

// Parse validates signature, issuer, expiry and token type.
func (i *Issuer) Parse(token string, typ TokenType) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != typ {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidToken, typ, claims.Type)
	}
	if claims.ID == "" || claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
