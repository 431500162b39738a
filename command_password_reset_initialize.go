package credentials

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Customer email."`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

// Validate enforces the payload shape.
func (p InitializePasswordResetMessage) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
	)
}

type InitializePasswordResetResponse struct {
	// Acknowledged is true whether or not the email maps to an account; the
	// response never reveals account existence.
	Acknowledged bool
}

// InitializePasswordResetHandler starts the reset flow: it stores a random
// single-use token with a 600s TTL and hands it to the notifier. An unknown
// email acknowledges exactly like a known one.
type InitializePasswordResetHandler struct {
	repo     RepositoryManager
	secrets  *EphemeralSecrets
	notifier Notifier
	logger   Logger
}

// NewInitializePasswordResetHandler creates a handler with sane defaults.
func NewInitializePasswordResetHandler(repo RepositoryManager, secrets *EphemeralSecrets) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:     repo,
		secrets:  secrets,
		notifier: logNotifier{logger: defLogger{}},
		logger:   defLogger{},
	}
}

// WithNotifier sets the notifier used to deliver the reset link.
func (h *InitializePasswordResetHandler) WithNotifier(notifier Notifier) *InitializePasswordResetHandler {
	if notifier != nil {
		h.notifier = notifier
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password reset payload")
	}

	resp := &InitializePasswordResetResponse{Acknowledged: true}

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			// Acknowledge without a trace: the response must not reveal
			// whether the address has an account.
			if event.OnResponse != nil {
				event.OnResponse(resp)
			}
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	token, err := h.secrets.Issue(ctx, SecretPurposePasswordReset, user.ID.String())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create password reset token")
	}

	if err := h.notifier.SendPasswordReset(user.Email, token); err != nil {
		h.logger.Warn("failed to deliver password reset notification", "error", err)
	}

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
