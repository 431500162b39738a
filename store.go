package credentials

import (
	"context"
	"encoding/json"
	"time"
)

// Key namespaces. These match the wire format the original service deployed
// with so outstanding entries survive an upgrade.
const (
	accessEntryPrefix  = "jwt_jti"
	refreshEntryPrefix = "refresh_jti"
	resetSecretPrefix  = "password_reset"
	verifySecretPrefix = "email_verification"
)

// EphemeralSecretTTL is the fixed lifetime of password reset tokens and
// email verification codes.
const EphemeralSecretTTL = 600 * time.Second

// CredentialStore is the narrow key/value surface the credential core needs:
// per-key TTL, atomic set/get/delete, and pattern scan for bulk revocation.
// "At most one valid revocation entry per jti" relies entirely on the store's
// per-key atomicity; there is no in-process locking.
type CredentialStore interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set writes value under key with the given TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// Scan returns all keys matching the glob pattern.
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// RevocationEntry is the opaque metadata stored per issued token. Its
// presence, not its content, is what validation checks.
type RevocationEntry struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func newRevocationEntry(userID string) RevocationEntry {
	return RevocationEntry{UserID: userID, CreatedAt: time.Now().UTC()}
}

func (e RevocationEntry) encode() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func accessEntryKey(subject, jti string) string {
	return accessEntryPrefix + ":" + subject + ":" + jti
}

func refreshEntryKey(subject, jti string) string {
	return refreshEntryPrefix + ":" + subject + ":" + jti
}

func accessEntryPattern(subject string) string {
	return accessEntryPrefix + ":" + subject + ":*"
}

func refreshEntryPattern(subject string) string {
	return refreshEntryPrefix + ":" + subject + ":*"
}

func resetSecretKey(token string) string {
	return resetSecretPrefix + ":" + token
}

func verifySecretKey(otp string) string {
	return verifySecretPrefix + ":" + otp
}
