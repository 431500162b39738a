package credentials

import (
	"context"

	"github.com/goliatone/go-errors"
)

// Validator is the per-request gate. Each step is a hard rejection point, in
// order: signature/expiry, claim type, revocation entry, embedded account
// state. A store timeout fails closed: the request is rejected as if the
// token were revoked.
type Validator struct {
	signer *Signer
	store  CredentialStore
	logger Logger
}

// NewValidator creates the request gate.
func NewValidator(signer *Signer, store CredentialStore) *Validator {
	return &Validator{
		signer: signer,
		store:  store,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the validator.
func (v *Validator) WithLogger(logger Logger) *Validator {
	if logger != nil {
		v.logger = logger
	}
	return v
}

// Validate checks a bearer string and returns the identity context embedded
// at issuance time. Profile changes after issuance are not reflected until
// the token is refreshed or expires; that staleness buys us a request path
// with no repository read.
func (v *Validator) Validate(ctx context.Context, bearer string) (*IdentityContext, error) {
	if bearer == "" {
		return nil, errors.New("missing bearer token", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}

	claims, err := v.signer.VerifyAccess(bearer)
	if err != nil {
		return nil, err
	}

	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrTokenMalformed
	}

	// The entry lookup is what makes immediate server-side revocation work:
	// the token stays cryptographically valid until natural expiry, but the
	// gate refuses it the moment the entry is gone.
	key := accessEntryKey(claims.Subject, claims.ID)
	if _, err := v.store.Get(ctx, key); err != nil {
		if err != ErrKeyNotFound {
			v.logger.Error("Validator store lookup failed, failing closed", "key", key, "error", err)
		}
		return nil, ErrTokenRevoked
	}

	if !claims.IsActive {
		return nil, ErrAccountInactive
	}

	if !claims.IsVerified {
		return nil, ErrAccountUnverified
	}

	return claims.IdentityContext(), nil
}
