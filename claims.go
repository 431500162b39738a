package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType discriminates access and refresh tokens. A token's type must
// match the operation consuming it; the Validator and Rotator both reject
// mismatches before touching the store.
type TokenType string

const (
	// TokenTypeAccess authorizes resource requests
	TokenTypeAccess TokenType = "access"
	// TokenTypeRefresh only mints new access/refresh pairs
	TokenTypeRefresh TokenType = "refresh"
)

// AccessClaims is the claim set carried by access tokens. Besides the
// registered claims it denormalizes a profile snapshot taken at issuance so
// the per-request gate never reads the identity repository. The snapshot goes
// stale until the token is refreshed or expires.
type AccessClaims struct {
	jwt.RegisteredClaims
	TokenType  TokenType `json:"type"`
	Email      string    `json:"email,omitempty"`
	Name       string    `json:"name,omitempty"`
	IsActive   bool      `json:"isActive"`
	IsVerified bool      `json:"isVerified"`
	Roles      []string  `json:"roles,omitempty"`
}

// RefreshClaims is the minimal claim set carried by refresh tokens: subject
// and jti only. Refresh tokens never authorize resource access, so they carry
// no profile snapshot a consumer could accidentally trust.
type RefreshClaims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"type"`
}

// UserID returns the subject claim.
func (c *AccessClaims) UserID() string {
	return c.RegisteredClaims.Subject
}

// TokenID returns the jti claim.
func (c *AccessClaims) TokenID() string {
	return c.RegisteredClaims.ID
}

// Expires returns the expiration time, zero if unset.
func (c *AccessClaims) Expires() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// HasRole checks the denormalized role snapshot.
func (c *AccessClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IdentityContext builds the minimal identity the gate hands to the request
// pipeline.
func (c *AccessClaims) IdentityContext() *IdentityContext {
	return &IdentityContext{
		ID:         c.UserID(),
		Email:      c.Email,
		Name:       c.Name,
		IsActive:   c.IsActive,
		IsVerified: c.IsVerified,
		Roles:      c.Roles,
	}
}

// UserID returns the subject claim.
func (c *RefreshClaims) UserID() string {
	return c.RegisteredClaims.Subject
}

// TokenID returns the jti claim.
func (c *RefreshClaims) TokenID() string {
	return c.RegisteredClaims.ID
}
