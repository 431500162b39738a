package credentials_test

import (
	"context"
	"errors"
	"testing"
	"time"

	credentials "github.com/goliatone/go-credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorAcceptsLiveToken(t *testing.T) {
	ctx := context.Background()
	signer := newTestSigner()
	store := newMemoryStore()
	issuer := credentials.NewIssuer(signer, store, newTestConfig()).WithLogger(testLogger{})
	validator := credentials.NewValidator(signer, store).WithLogger(testLogger{})

	identity := activeIdentity("9f4ac5b2-59d0-4a54-8f0e-2b5a86cf6a01")
	tokenString, err := issuer.IssueAccessToken(ctx, identity)
	require.NoError(t, err)

	got, err := validator.Validate(ctx, tokenString)
	require.NoError(t, err)
	assert.Equal(t, identity.ID(), got.ID)
	assert.Equal(t, identity.Email(), got.Email)
	assert.Equal(t, identity.Name(), got.Name)
	assert.True(t, got.IsActive)
	assert.True(t, got.IsVerified)
	assert.Equal(t, identity.Roles(), got.Roles)
}

func TestValidatorRejectsMissingBearer(t *testing.T) {
	validator := credentials.NewValidator(newTestSigner(), newMemoryStore())

	_, err := validator.Validate(context.Background(), "")
	assert.Error(t, err)
}

func TestValidatorRejectsRefreshToken(t *testing.T) {
	ctx := context.Background()
	signer := newTestSigner()
	store := newMemoryStore()
	issuer := credentials.NewIssuer(signer, store, newTestConfig()).WithLogger(testLogger{})
	validator := credentials.NewValidator(signer, store).WithLogger(testLogger{})

	refreshToken, err := issuer.IssueRefreshToken(ctx, "user-123")
	require.NoError(t, err)

	_, err = validator.Validate(ctx, refreshToken)
	assert.ErrorIs(t, err, credentials.ErrWrongTokenType)
}

func TestValidatorRejectsRevokedToken(t *testing.T) {
	ctx := context.Background()
	signer := newTestSigner()
	store := newMemoryStore()
	issuer := credentials.NewIssuer(signer, store, newTestConfig()).WithLogger(testLogger{})
	validator := credentials.NewValidator(signer, store).WithLogger(testLogger{})

	identity := activeIdentity("user-123")
	tokenString, err := issuer.IssueAccessToken(ctx, identity)
	require.NoError(t, err)

	// Still passes while the entry lives.
	_, err = validator.Validate(ctx, tokenString)
	require.NoError(t, err)

	claims, err := signer.VerifyAccess(tokenString)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "jwt_jti:user-123:"+claims.TokenID()))

	// Token is still cryptographically valid, gate refuses it anyway.
	_, err = validator.Validate(ctx, tokenString)
	assert.ErrorIs(t, err, credentials.ErrTokenRevoked)
}

func TestValidatorFailsClosedOnStoreError(t *testing.T) {
	ctx := context.Background()
	signer := newTestSigner()
	backing := newMemoryStore()
	issuer := credentials.NewIssuer(signer, backing, newTestConfig()).WithLogger(testLogger{})

	tokenString, err := issuer.IssueAccessToken(ctx, activeIdentity("user-123"))
	require.NoError(t, err)

	store := &failingStore{
		memoryStore: backing,
		getErr:      errors.New("redis: i/o timeout"),
	}
	validator := credentials.NewValidator(signer, store).WithLogger(testLogger{})

	_, err = validator.Validate(ctx, tokenString)
	assert.ErrorIs(t, err, credentials.ErrTokenRevoked)
}

func TestValidatorRejectsAccountState(t *testing.T) {
	ctx := context.Background()
	signer := newTestSigner()
	store := newMemoryStore()
	issuer := credentials.NewIssuer(signer, store, newTestConfig()).WithLogger(testLogger{})
	validator := credentials.NewValidator(signer, store).WithLogger(testLogger{})

	t.Run("inactive account", func(t *testing.T) {
		identity := activeIdentity("user-inactive")
		identity.isActive = false

		tokenString, err := issuer.IssueAccessToken(ctx, identity)
		require.NoError(t, err)

		_, err = validator.Validate(ctx, tokenString)
		assert.ErrorIs(t, err, credentials.ErrAccountInactive)
	})

	t.Run("unverified account", func(t *testing.T) {
		identity := activeIdentity("user-unverified")
		identity.isVerified = false

		tokenString, err := issuer.IssueAccessToken(ctx, identity)
		require.NoError(t, err)

		_, err = validator.Validate(ctx, tokenString)
		assert.ErrorIs(t, err, credentials.ErrAccountUnverified)
	})
}

func TestValidatorRejectsExpiredAccessToken(t *testing.T) {
	ctx := context.Background()
	signer := newTestSigner()
	store := newMemoryStore()

	cfg := newTestConfig()
	cfg.accessTTL = -time.Minute

	issuer := credentials.NewIssuer(signer, store, cfg).WithLogger(testLogger{})

	tokenString, err := issuer.IssueAccessToken(ctx, activeIdentity("user-123"))
	require.NoError(t, err)

	validator := credentials.NewValidator(signer, store).WithLogger(testLogger{})

	_, err = validator.Validate(ctx, tokenString)
	assert.Error(t, err)
}
