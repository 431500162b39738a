package credentials

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type FinalizePasswordResetMessage struct {
	Token    string `json:"token" doc:"Reset password token from the email link"`
	Password string `json:"password" example:"some_secret_word" doc:"Password"`
}

func (p FinalizePasswordResetMessage) Type() string { return "user.password_reset_finalize" }

// Validate enforces the payload shape.
func (p FinalizePasswordResetMessage) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Token, validation.Required),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 72)),
	)
}

// FinalizePasswordResetHandler consumes a reset token exactly once, updates
// the password hash, and revokes every outstanding session for the subject.
type FinalizePasswordResetHandler struct {
	repo     RepositoryManager
	secrets  *EphemeralSecrets
	revoker  *SessionRevoker
	activity ActivitySink
	logger   Logger
}

// NewFinalizePasswordResetHandler creates a handler with sane defaults.
func NewFinalizePasswordResetHandler(repo RepositoryManager, secrets *EphemeralSecrets, revoker *SessionRevoker) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		repo:     repo,
		secrets:  secrets,
		revoker:  revoker,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit password reset events.
func (h *FinalizePasswordResetHandler) WithActivitySink(sink ActivitySink) *FinalizePasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *FinalizePasswordResetHandler) WithLogger(logger Logger) *FinalizePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// ValidateToken is the non-destructive presence check the reset form uses
// before asking for a new password.
func (h *FinalizePasswordResetHandler) ValidateToken(ctx context.Context, token string) bool {
	return h.secrets.Validate(ctx, SecretPurposePasswordReset, token)
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password reset payload")
	}

	subjectID, err := h.secrets.Consume(ctx, SecretPurposePasswordReset, event.Token)
	if err != nil {
		return ErrSecretInvalidOrExpired
	}

	uid, err := uuid.Parse(subjectID)
	if err != nil {
		return goerrors.New("password reset token maps to an invalid subject", goerrors.CategoryInternal)
	}

	passwordHash, err := HashPassword(event.Password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	if err := h.repo.Users().ResetPassword(ctx, uid, passwordHash); err != nil {
		if goerrors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user password in database")
	}

	// A password change invalidates every outstanding session; best-effort.
	if err := h.revoker.Revoke(ctx, subjectID, ""); err != nil {
		h.logger.Warn("failed to revoke sessions after password reset", "error", err)
	}

	h.recordActivity(ctx, subjectID)

	return nil
}

func (h *FinalizePasswordResetHandler) recordActivity(ctx context.Context, subjectID string) {
	event := ActivityEvent{
		EventType:  ActivityEventPasswordResetSuccess,
		Actor:      ActorRef{ID: subjectID, Type: "user"},
		UserID:     subjectID,
		OccurredAt: time.Now(),
	}

	if err := h.activity.Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during password reset: %v", err)
	}
}
