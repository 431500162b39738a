package credentials

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// UserProvider resolves identities against the user repository
type UserProvider struct {
	users  Users
	logger Logger
}

var _ IdentityProvider = (*UserProvider)(nil)

// NewUserProvider will create a new UserProvider
func NewUserProvider(users Users) *UserProvider {
	return &UserProvider{
		users:  users,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// VerifyIdentity will find the user, compare to the password, and return identity
func (u *UserProvider) VerifyIdentity(ctx context.Context, email, password string) (Identity, error) {
	user, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := u.users.TrackSuccessfulLogin(ctx, user); err != nil {
		u.logger.Error("failed to track successful login", "error", err)
	}

	return NewIdentityFromUser(user), nil
}

// FindIdentityByID resolves an identity by its stable id.
func (u *UserProvider) FindIdentityByID(ctx context.Context, id string) (Identity, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrIdentityNotFound
	}

	user, err := u.users.GetByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return NewIdentityFromUser(user), nil
}

// FindIdentityByEmail resolves an identity by its unique email.
func (u *UserProvider) FindIdentityByEmail(ctx context.Context, email string) (Identity, error) {
	user, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return NewIdentityFromUser(user), nil
}
