package credentials

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	UseHashid  bool
	OnResponse func(user *User)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Validate enforces the payload shape before the handler touches storage.
func (e RegisterUserMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Email, validation.Required, is.Email),
		validation.Field(&e.Password, validation.Required, validation.Length(8, 72)),
	)
}

// RegisterUserHandler creates an unverified user with the default role and
// kicks off the email verification flow so the account can prove ownership.
type RegisterUserHandler struct {
	repo     RepositoryManager
	secrets  *EphemeralSecrets
	notifier Notifier
	logger   Logger
}

// NewRegisterUserHandler creates a handler with sane defaults.
func NewRegisterUserHandler(repo RepositoryManager, secrets *EphemeralSecrets) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:     repo,
		secrets:  secrets,
		notifier: logNotifier{logger: defLogger{}},
		logger:   defLogger{},
	}
}

// WithNotifier sets the notifier used to deliver the verification code.
func (h *RegisterUserHandler) WithNotifier(notifier Notifier) *RegisterUserHandler {
	if notifier != nil {
		h.notifier = notifier
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if existing, err := h.repo.Users().GetByEmailTx(ctx, tx, event.Email); err == nil && existing != nil {
			return ErrDuplicateEmail
		} else if err != nil && !goerrors.IsNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing user")
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = strings.ToLower(strings.TrimSpace(event.Email))
		user.Name = event.Name
		user.Roles = []string{RoleUser}
		user.IsActive = true
		user.IsVerified = false
		if event.UseHashid {
			if id, err := hashid.NewUUID(user.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	// Outside the transaction: verification delivery must not roll back the
	// account, the user can always request a new code.
	otp, err := h.secrets.Issue(ctx, SecretPurposeEmailVerification, user.ID.String())
	if err != nil {
		h.logger.Warn("failed to issue verification code at registration", "error", err)
	} else if err := h.notifier.SendVerificationCode(user.Email, otp); err != nil {
		h.logger.Warn("failed to deliver verification code", "error", err)
	}

	if event.OnResponse != nil {
		event.OnResponse(user)
	}

	return nil
}
