package credentials

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

type RequestEmailVerificationMessage struct {
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Customer email."`
	OnResponse func(otp string)
}

func (m RequestEmailVerificationMessage) Type() string { return "user.verification_request" }

// Validate enforces the payload shape.
func (m RequestEmailVerificationMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email, validation.Required, is.Email),
	)
}

// RequestEmailVerificationHandler issues a 6 digit verification code with a
// 600s TTL. Unlike password reset, this flow does reveal account state: an
// unknown email fails with not found and a verified account fails with
// already verified. The caller is authenticated or registering, so there is
// no address-probing concern here.
type RequestEmailVerificationHandler struct {
	repo     RepositoryManager
	secrets  *EphemeralSecrets
	notifier Notifier
	logger   Logger
}

// NewRequestEmailVerificationHandler creates a handler with sane defaults.
func NewRequestEmailVerificationHandler(repo RepositoryManager, secrets *EphemeralSecrets) *RequestEmailVerificationHandler {
	return &RequestEmailVerificationHandler{
		repo:     repo,
		secrets:  secrets,
		notifier: logNotifier{logger: defLogger{}},
		logger:   defLogger{},
	}
}

// WithNotifier sets the notifier used to deliver the verification code.
func (h *RequestEmailVerificationHandler) WithNotifier(notifier Notifier) *RequestEmailVerificationHandler {
	if notifier != nil {
		h.notifier = notifier
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *RequestEmailVerificationHandler) WithLogger(logger Logger) *RequestEmailVerificationHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RequestEmailVerificationHandler) Execute(ctx context.Context, event RequestEmailVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during verification request",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RequestEmailVerificationHandler) execute(ctx context.Context, event RequestEmailVerificationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid verification request payload")
	}

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for verification")
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}

	otp, err := h.secrets.Issue(ctx, SecretPurposeEmailVerification, user.ID.String())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create verification code")
	}

	if err := h.notifier.SendVerificationCode(user.Email, otp); err != nil {
		h.logger.Warn("failed to deliver verification code", "error", err)
	}

	if event.OnResponse != nil {
		event.OnResponse(otp)
	}

	return nil
}
