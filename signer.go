package credentials

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// Signer signs and verifies compact JWTs with a single shared HS256 secret.
// The secret is fixed for the process lifetime; there is no key rotation.
// A key-id claim plus multi-key verification is the upgrade path if that
// ever changes.
type Signer struct {
	signingKey []byte
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
}

// NewSigner creates a new Signer instance
func NewSigner(signingKey []byte, issuer string, audience jwt.ClaimStrings, logger Logger) *Signer {
	if logger == nil {
		logger = defLogger{}
	}
	return &Signer{
		signingKey: signingKey,
		issuer:     issuer,
		audience:   audience,
		logger:     logger,
	}
}

// SignAccess signs an access claim set with the given TTL. Registered claims
// the caller left empty (issuer, audience, issued-at) are stamped with the
// signer defaults.
func (s *Signer) SignAccess(claims *AccessClaims, ttl time.Duration) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}
	claims.TokenType = TokenTypeAccess
	s.stampRegistered(&claims.RegisteredClaims, ttl)
	return s.sign(claims)
}

// SignRefresh signs a refresh claim set with the given TTL.
func (s *Signer) SignRefresh(claims *RefreshClaims, ttl time.Duration) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}
	claims.TokenType = TokenTypeRefresh
	s.stampRegistered(&claims.RegisteredClaims, ttl)
	return s.sign(claims)
}

// VerifyAccess parses and validates a token string and requires the access
// claim type. Claims from a token that failed signature check are never
// returned.
func (s *Signer) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.verify(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// VerifyRefresh parses and validates a token string and requires the refresh
// claim type and a present jti.
func (s *Signer) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.verify(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh || claims.Subject == "" || claims.ID == "" {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// DecodeRefresh extracts refresh claims without verifying the signature or
// expiry. Logout uses it to find the individual jti entry even when the
// refresh token already expired; never trust these claims for anything else.
func (s *Signer) DecodeRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}
	return claims, nil
}

func (s *Signer) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

func (s *Signer) verify(tokenString string, claims jwt.Claims) error {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if s.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(s.issuer))
	}
	if len(s.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(s.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			s.logger.Error("Signer verify encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if !token.Valid {
		s.logger.Error("Signer verify could not validate claims")
		return ErrTokenMalformed
	}

	return nil
}

func (s *Signer) stampRegistered(rc *jwt.RegisteredClaims, ttl time.Duration) {
	now := time.Now()
	if rc.Issuer == "" {
		rc.Issuer = s.issuer
	}
	if len(rc.Audience) == 0 && len(s.audience) > 0 {
		rc.Audience = make(jwt.ClaimStrings, len(s.audience))
		copy(rc.Audience, s.audience)
	}
	if rc.IssuedAt == nil {
		rc.IssuedAt = jwt.NewNumericDate(now)
	}
	if rc.ExpiresAt == nil {
		rc.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
}
