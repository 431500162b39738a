package credentials

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Authenticator is the login-side facade: it verifies passwords, mints token
// pairs, and handles password changes (which revoke every outstanding
// session for the subject).
type Authenticator struct {
	provider IdentityProvider
	repo     RepositoryManager
	issuer   *Issuer
	revoker  *SessionRevoker
	logger   Logger
	activity ActivitySink
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, repo RepositoryManager, issuer *Issuer, revoker *SessionRevoker) *Authenticator {
	return &Authenticator{
		provider: provider,
		repo:     repo,
		issuer:   issuer,
		revoker:  revoker,
		logger:   defLogger{},
		activity: noopActivitySink{},
	}
}

// WithLogger overrides the logger used by the authenticator.
func (a *Authenticator) WithLogger(logger Logger) *Authenticator {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (a *Authenticator) WithActivitySink(sink ActivitySink) *Authenticator {
	a.activity = normalizeActivitySink(sink)
	return a
}

// Login verifies the email/password pair and mints an access/refresh pair.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	identity, err := a.provider.VerifyIdentity(ctx, email, password)
	if err != nil {
		a.logger.Error("Login verify identity error", "error", err)
		a.emitAuthEvent(ctx, ActivityEventLoginFailure, "", map[string]any{
			"identifier": email,
			"error":      err.Error(),
		})
		return nil, ErrInvalidCredentials
	}

	pair, err := a.issuer.IssuePair(ctx, identity)
	if err != nil {
		return nil, err
	}

	a.emitAuthEvent(ctx, ActivityEventLoginSuccess, identity.ID(), nil)

	return &AuthResult{
		TokenPair: *pair,
		Identity:  ContextFromIdentity(identity),
	}, nil
}

// ChangePassword verifies the current password, stores the new hash, and
// revokes every outstanding session for the subject so stolen tokens die
// with the old password.
func (a *Authenticator) ChangePassword(ctx context.Context, subjectID, currentPassword, newPassword string) error {
	uid, err := uuid.Parse(subjectID)
	if err != nil {
		return ErrIdentityNotFound
	}

	user, err := a.repo.Users().GetByID(ctx, subjectID)
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user for password change")
	}

	if err := ComparePasswordAndHash(currentPassword, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid new password provided")
	}

	if err := a.repo.Users().ResetPassword(ctx, uid, hash); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to update user password")
	}

	// Best-effort: the new password already took effect.
	if err := a.revoker.Revoke(ctx, subjectID, ""); err != nil {
		a.logger.Warn("failed to revoke sessions after password change", "error", err)
	}

	return nil
}

func (a *Authenticator) emitAuthEvent(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      ActorRef{ID: userID, Type: "user"},
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if err := a.activity.Record(ctx, event); err != nil {
		a.logger.Warn("activity sink error: %v", err)
	}
}
