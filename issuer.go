package credentials

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// Issuer builds access and refresh claim sets, signs them, and records a
// revocation-tracking entry per issued token. Issuance succeeds only once the
// entry write is acknowledged: a signed-but-unregistered token would fail the
// Validator's revocation check, so a store failure here makes the whole
// issuance fail.
type Issuer struct {
	signer     *Signer
	store      CredentialStore
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     Logger
}

// NewIssuer creates an Issuer with TTLs from config.
func NewIssuer(signer *Signer, store CredentialStore, cfg Config) *Issuer {
	return &Issuer{
		signer:     signer,
		store:      store,
		accessTTL:  cfg.GetAccessTokenExpiration(),
		refreshTTL: cfg.GetRefreshTokenExpiration(),
		logger:     defLogger{},
	}
}

// WithLogger overrides the logger used by the issuer.
func (i *Issuer) WithLogger(logger Logger) *Issuer {
	if logger != nil {
		i.logger = logger
	}
	return i
}

// IssueAccessToken mints an access token carrying the identity snapshot and
// registers its revocation entry under (access, subject, jti).
func (i *Issuer) IssueAccessToken(ctx context.Context, identity Identity) (string, error) {
	if identity == nil {
		return "", errors.New("identity is required", errors.CategoryBadInput)
	}

	jti, err := newTokenID()
	if err != nil {
		return "", err
	}

	claims := &AccessClaims{
		Email:      identity.Email(),
		Name:       identity.Name(),
		IsActive:   identity.IsActive(),
		IsVerified: identity.IsVerified(),
		Roles:      identity.Roles(),
	}
	claims.Subject = identity.ID()
	claims.ID = jti

	token, err := i.signer.SignAccess(claims, i.accessTTL)
	if err != nil {
		return "", err
	}

	if err := i.registerEntry(ctx, accessEntryKey(identity.ID(), jti), identity.ID(), i.accessTTL); err != nil {
		return "", err
	}

	return token, nil
}

// IssueRefreshToken mints a refresh token with a minimal claim set (subject
// and jti only) and registers its entry under (refresh, subject, jti).
func (i *Issuer) IssueRefreshToken(ctx context.Context, subjectID string) (string, error) {
	if subjectID == "" {
		return "", errors.New("subject id is required", errors.CategoryBadInput)
	}

	jti, err := newTokenID()
	if err != nil {
		return "", err
	}

	claims := &RefreshClaims{}
	claims.Subject = subjectID
	claims.ID = jti

	token, err := i.signer.SignRefresh(claims, i.refreshTTL)
	if err != nil {
		return "", err
	}

	if err := i.registerEntry(ctx, refreshEntryKey(subjectID, jti), subjectID, i.refreshTTL); err != nil {
		return "", err
	}

	return token, nil
}

// IssuePair mints an access/refresh pair for the identity.
func (i *Issuer) IssuePair(ctx context.Context, identity Identity) (*TokenPair, error) {
	accessToken, err := i.IssueAccessToken(ctx, identity)
	if err != nil {
		return nil, err
	}

	refreshToken, err := i.IssueRefreshToken(ctx, identity.ID())
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (i *Issuer) registerEntry(ctx context.Context, key, subject string, ttl time.Duration) error {
	entry, err := newRevocationEntry(subject).encode()
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode revocation entry")
	}

	if err := i.store.Set(ctx, key, entry, ttl); err != nil {
		i.logger.Error("Issuer failed to register revocation entry", "key", key, "error", err)
		return errors.Wrap(err, errors.CategoryInternal, "failed to register issued token")
	}

	return nil
}
