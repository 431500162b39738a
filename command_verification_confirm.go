package credentials

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type ConfirmEmailVerificationMessage struct {
	OTP        string `json:"otp" example:"493827" doc:"Verification code from the email."`
	OnResponse func(result *AuthResult)
}

func (m ConfirmEmailVerificationMessage) Type() string { return "user.verification_confirm" }

// Validate enforces the payload shape.
func (m ConfirmEmailVerificationMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.OTP, validation.Required, validation.Length(6, 6)),
	)
}

// ConfirmEmailVerificationHandler consumes the verification code exactly
// once, flips the verified flag, and mints a fresh access/refresh pair so
// the caller ends the flow already authenticated.
type ConfirmEmailVerificationHandler struct {
	repo     RepositoryManager
	secrets  *EphemeralSecrets
	issuer   *Issuer
	activity ActivitySink
	logger   Logger
}

// NewConfirmEmailVerificationHandler creates a handler with sane defaults.
func NewConfirmEmailVerificationHandler(repo RepositoryManager, secrets *EphemeralSecrets, issuer *Issuer) *ConfirmEmailVerificationHandler {
	return &ConfirmEmailVerificationHandler{
		repo:     repo,
		secrets:  secrets,
		issuer:   issuer,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit verification events.
func (h *ConfirmEmailVerificationHandler) WithActivitySink(sink ActivitySink) *ConfirmEmailVerificationHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *ConfirmEmailVerificationHandler) WithLogger(logger Logger) *ConfirmEmailVerificationHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ConfirmEmailVerificationHandler) Execute(ctx context.Context, event ConfirmEmailVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during verification confirmation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmEmailVerificationHandler) execute(ctx context.Context, event ConfirmEmailVerificationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid verification payload")
	}

	subjectID, err := h.secrets.Consume(ctx, SecretPurposeEmailVerification, event.OTP)
	if err != nil {
		return ErrSecretInvalidOrExpired
	}

	uid, err := uuid.Parse(subjectID)
	if err != nil {
		return goerrors.New("verification code maps to an invalid subject", goerrors.CategoryInternal)
	}

	user, err := h.repo.Users().MarkVerified(ctx, uid)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark user as verified")
	}

	pair, err := h.issuer.IssuePair(ctx, NewIdentityFromUser(user))
	if err != nil {
		return err
	}

	h.recordActivity(ctx, subjectID)

	if event.OnResponse != nil {
		event.OnResponse(&AuthResult{
			TokenPair: *pair,
			Identity:  ContextFromIdentity(NewIdentityFromUser(user)),
		})
	}

	return nil
}

func (h *ConfirmEmailVerificationHandler) recordActivity(ctx context.Context, subjectID string) {
	event := ActivityEvent{
		EventType:  ActivityEventEmailVerified,
		Actor:      ActorRef{ID: subjectID, Type: "user"},
		UserID:     subjectID,
		OccurredAt: time.Now(),
	}

	if err := h.activity.Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during email verification: %v", err)
	}
}
