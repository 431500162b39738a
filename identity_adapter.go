package credentials

// UserIdentity adapts a User into the Identity interface for token issuance.
type UserIdentity struct {
	user *User
}

// NewIdentityFromUser returns an Identity adapter for the provided user.
func NewIdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return UserIdentity{user: user}
}

// ID returns the user's ID as a string.
func (u UserIdentity) ID() string {
	if u.user == nil {
		return ""
	}
	return u.user.ID.String()
}

// Email returns the user's email address.
func (u UserIdentity) Email() string {
	if u.user == nil {
		return ""
	}
	return u.user.Email
}

// Name returns the user's display name.
func (u UserIdentity) Name() string {
	if u.user == nil {
		return ""
	}
	return u.user.Name
}

// IsActive reports whether the account is active.
func (u UserIdentity) IsActive() bool {
	if u.user == nil {
		return false
	}
	return u.user.IsActive
}

// IsVerified reports whether the account's email was verified.
func (u UserIdentity) IsVerified() bool {
	if u.user == nil {
		return false
	}
	return u.user.IsVerified
}

// Roles returns the user's role names.
func (u UserIdentity) Roles() []string {
	if u.user == nil {
		return nil
	}
	return u.user.Roles
}

// ContextFromIdentity flattens an Identity into the context value handed to
// request handlers.
func ContextFromIdentity(identity Identity) IdentityContext {
	return IdentityContext{
		ID:         identity.ID(),
		Email:      identity.Email(),
		Name:       identity.Name(),
		IsActive:   identity.IsActive(),
		IsVerified: identity.IsVerified(),
		Roles:      identity.Roles(),
	}
}
