package credentials

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeTokenRevoked       = "TOKEN_REVOKED"
	TextCodeWrongTokenType     = "WRONG_TOKEN_TYPE"
	TextCodeAccountInactive    = "ACCOUNT_INACTIVE"
	TextCodeAccountUnverified  = "ACCOUNT_UNVERIFIED"
	TextCodeAlreadyVerified    = "ALREADY_VERIFIED"
	TextCodeRefreshNotFound    = "REFRESH_TOKEN_NOT_FOUND"
	TextCodeSecretExpired      = "SECRET_INVALID_OR_EXPIRED"
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeDuplicateEmail     = "DUPLICATE_EMAIL"
)

// ErrTokenExpired means the token's own exp claim has elapsed.
var ErrTokenExpired = goerrors.New("invalid or expired token", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed covers bad signatures, wrong algorithms, and garbled input.
var ErrTokenMalformed = goerrors.New("invalid or malformed token", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenRevoked means the token verified but its revocation entry is gone.
var ErrTokenRevoked = goerrors.New("invalid or revoked token", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenRevoked).
	WithCode(goerrors.CodeUnauthorized)

// ErrWrongTokenType means an access token was used where a refresh token is
// required, or vice versa.
var ErrWrongTokenType = goerrors.New("wrong token type", goerrors.CategoryAuth).
	WithTextCode(TextCodeWrongTokenType).
	WithCode(goerrors.CodeUnauthorized)

var ErrAccountInactive = goerrors.New("user account is inactive", goerrors.CategoryAuth).
	WithTextCode(TextCodeAccountInactive).
	WithCode(goerrors.CodeUnauthorized)

var ErrAccountUnverified = goerrors.New("user account is not verified", goerrors.CategoryAuth).
	WithTextCode(TextCodeAccountUnverified).
	WithCode(goerrors.CodeUnauthorized)

var ErrAlreadyVerified = goerrors.New("email already verified", goerrors.CategoryConflict).
	WithTextCode(TextCodeAlreadyVerified).
	WithCode(goerrors.CodeConflict)

var ErrRefreshTokenNotFound = goerrors.New("refresh token not found or expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeRefreshNotFound).
	WithCode(goerrors.CodeUnauthorized)

// ErrSecretInvalidOrExpired is the single-use consumption failure for both
// password reset tokens and verification codes.
var ErrSecretInvalidOrExpired = goerrors.New("invalid or expired token", goerrors.CategoryAuth).
	WithTextCode(TextCodeSecretExpired).
	WithCode(goerrors.CodeUnauthorized)

var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

var ErrDuplicateEmail = goerrors.New("user with this email already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(goerrors.CodeConflict)

// ErrKeyNotFound is returned by CredentialStore.Get for absent keys.
var ErrKeyNotFound = errors.New("credential store: key not found")

// ErrNoEmptyString guards hashing empty passwords
var ErrNoEmptyString = errors.New("password must not be empty")

// ErrMismatchedHashAndPassword mirrors bcrypt's mismatch error
var ErrMismatchedHashAndPassword = errors.New("password does not match hash")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenExpired) || strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenMalformed) ||
		strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
