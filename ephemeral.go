package credentials

import (
	"context"
)

// SecretPurpose namespaces ephemeral secrets per flow.
type SecretPurpose string

const (
	// SecretPurposePasswordReset backs "prove you still control this account"
	SecretPurposePasswordReset SecretPurpose = "password-reset"
	// SecretPurposeEmailVerification backs "prove you own this email"
	SecretPurposeEmailVerification SecretPurpose = "email-verification"
)

// EphemeralSecrets implements the shared state machine behind email
// verification and password reset: Issued (random secret stored with the
// subject id and a 600s TTL), Validated (presence check, non-destructive),
// Consumed (lookup then immediate delete; a second consumption fails as not
// found).
type EphemeralSecrets struct {
	store CredentialStore
}

// NewEphemeralSecrets creates the secret flow helper.
func NewEphemeralSecrets(store CredentialStore) *EphemeralSecrets {
	return &EphemeralSecrets{store: store}
}

// Issue generates an opaque secret for the purpose and stores secret→subject
// with the fixed TTL. Password reset secrets are 32-byte hex tokens; email
// verification secrets are 6 digit codes a person can type.
func (e *EphemeralSecrets) Issue(ctx context.Context, purpose SecretPurpose, subjectID string) (string, error) {
	var secret string
	var err error

	switch purpose {
	case SecretPurposeEmailVerification:
		secret, err = RandomOTP()
	default:
		secret, err = RandomToken(32)
	}
	if err != nil {
		return "", err
	}

	if err := e.store.Set(ctx, e.key(purpose, secret), subjectID, EphemeralSecretTTL); err != nil {
		return "", err
	}

	return secret, nil
}

// Validate reports whether the secret is still live without consuming it.
// Store failures read as "not valid"; the caller can always retry.
func (e *EphemeralSecrets) Validate(ctx context.Context, purpose SecretPurpose, secret string) bool {
	if secret == "" {
		return false
	}
	_, err := e.store.Get(ctx, e.key(purpose, secret))
	return err == nil
}

// Consume looks up the secret and deletes it in the same call, returning the
// subject id it was issued for. A second consumption of the same secret fails
// with ErrSecretInvalidOrExpired.
func (e *EphemeralSecrets) Consume(ctx context.Context, purpose SecretPurpose, secret string) (string, error) {
	if secret == "" {
		return "", ErrSecretInvalidOrExpired
	}

	key := e.key(purpose, secret)

	subjectID, err := e.store.Get(ctx, key)
	if err != nil {
		return "", ErrSecretInvalidOrExpired
	}

	if err := e.store.Delete(ctx, key); err != nil {
		// The secret must not survive consumption; without the delete we
		// cannot honor single use, so reject.
		return "", ErrSecretInvalidOrExpired
	}

	return subjectID, nil
}

func (e *EphemeralSecrets) key(purpose SecretPurpose, secret string) string {
	if purpose == SecretPurposeEmailVerification {
		return verifySecretKey(secret)
	}
	return resetSecretKey(secret)
}
