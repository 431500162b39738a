package credentials

import (
	"context"
)

// IdentityProvider resolves identities for rotation and login flows. The
// credential core only needs these three lookups; the full user repository
// stays behind this interface.
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, email, password string) (Identity, error)
	FindIdentityByID(ctx context.Context, id string) (Identity, error)
	FindIdentityByEmail(ctx context.Context, email string) (Identity, error)
}

// Rotator consumes a refresh token and produces a new access/refresh pair.
//
// The new pair is minted and registered before the consumed entry is deleted,
// and no lock is held across the read-check-delete-reissue sequence. Two
// concurrent rotations of the same still-valid refresh token can therefore
// both succeed, each producing a usable pair. That race is a documented
// property of the protocol, not an enforced single-winner guarantee; closing
// it would need an atomic check-and-delete at the store layer.
type Rotator struct {
	signer   *Signer
	store    CredentialStore
	issuer   *Issuer
	provider IdentityProvider
	logger   Logger
}

// NewRotator creates a Rotator.
func NewRotator(signer *Signer, store CredentialStore, issuer *Issuer, provider IdentityProvider) *Rotator {
	return &Rotator{
		signer:   signer,
		store:    store,
		issuer:   issuer,
		provider: provider,
		logger:   defLogger{},
	}
}

// WithLogger overrides the logger used by the rotator.
func (r *Rotator) WithLogger(logger Logger) *Rotator {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Rotate verifies a refresh token, checks it has not been consumed, and mints
// a fresh pair for the subject. The consumed entry is deleted last, which is
// what enforces (sequential) single use: a second rotation finds no entry and
// fails with ErrRefreshTokenNotFound.
func (r *Rotator) Rotate(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := r.signer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	// Absent means already used, revoked, or expired. Store failures reject
	// too: validation fails closed.
	key := refreshEntryKey(claims.Subject, claims.ID)
	if _, err := r.store.Get(ctx, key); err != nil {
		if err != ErrKeyNotFound {
			r.logger.Error("Rotator store lookup failed, failing closed", "key", key, "error", err)
		}
		return nil, ErrRefreshTokenNotFound
	}

	identity, err := r.provider.FindIdentityByID(ctx, claims.Subject)
	if err != nil {
		return nil, ErrIdentityNotFound
	}

	if !identity.IsActive() {
		return nil, ErrAccountInactive
	}

	pair, err := r.issuer.IssuePair(ctx, identity)
	if err != nil {
		return nil, err
	}

	// Delete after the new pair is registered. A failed delete leaves the old
	// refresh token usable until TTL expiry; log it and move on.
	if err := r.store.Delete(ctx, key); err != nil {
		r.logger.Warn("Rotator failed to delete consumed refresh entry", "key", key, "error", err)
	}

	return &AuthResult{
		TokenPair: *pair,
		Identity: IdentityContext{
			ID:         identity.ID(),
			Email:      identity.Email(),
			Name:       identity.Name(),
			IsActive:   identity.IsActive(),
			IsVerified: identity.IsVerified(),
			Roles:      identity.Roles(),
		},
	}, nil
}
