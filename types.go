package credentials

import (
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an identity as seen by the token issuer.
// Access tokens denormalize this snapshot into their claims so the per-request
// gate can avoid a repository read.
type Identity interface {
	ID() string
	Email() string
	Name() string
	IsActive() bool
	IsVerified() bool
	Roles() []string
}

// IdentityContext is the minimal identity the validation gate exposes to the
// rest of the request pipeline. It never carries the password hash.
type IdentityContext struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	Name       string   `json:"name,omitempty"`
	IsActive   bool     `json:"is_active"`
	IsVerified bool     `json:"is_verified"`
	Roles      []string `json:"roles,omitempty"`
}

// TokenPair is an access/refresh pair produced by issuance and rotation.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResult is a token pair plus the identity it was minted for.
type AuthResult struct {
	TokenPair
	Identity IdentityContext `json:"user"`
}

// Config holds credential options
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetAudience() []string
	GetAccessTokenExpiration() time.Duration
	GetRefreshTokenExpiration() time.Duration
}

// Notifier delivers ephemeral secrets to the account owner. Implementations
// send email; the default just logs so local setups keep working.
type Notifier interface {
	SendPasswordReset(email, token string) error
	SendVerificationCode(email, otp string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] CREDENTIALS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] CREDENTIALS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] CREDENTIALS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] CREDENTIALS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

type logNotifier struct {
	logger Logger
}

func (n logNotifier) SendPasswordReset(email, token string) error {
	n.logger.Info("password reset notification", "email", email, "link", "/password-reset/"+token)
	return nil
}

func (n logNotifier) SendVerificationCode(email, otp string) error {
	n.logger.Info("email verification notification", "email", email, "otp", otp)
	return nil
}
