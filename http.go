package credentials

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// DefaultContextKey is where the gate stores the validated identity on the
// router context.
const DefaultContextKey = "identity"

// HTTPGate adapts the Validator into router middleware. Every consumer past
// the gate sees an IdentityContext; the bearer string itself stays opaque to
// them.
type HTTPGate struct {
	validator    *Validator
	contextKey   string
	authScheme   string
	logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

// NewHTTPGate creates the middleware wrapper around a Validator.
func NewHTTPGate(validator *Validator) *HTTPGate {
	g := &HTTPGate{
		validator:  validator,
		contextKey: DefaultContextKey,
		authScheme: "Bearer",
		logger:     defLogger{},
	}
	g.ErrorHandler = g.defaultErrHandler
	return g
}

// WithContextKey overrides the locals key used for the identity.
func (g *HTTPGate) WithContextKey(key string) *HTTPGate {
	if key != "" {
		g.contextKey = key
	}
	return g
}

// WithLogger overrides the logger used by the gate.
func (g *HTTPGate) WithLogger(logger Logger) *HTTPGate {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// Protected returns middleware that rejects requests without a valid access
// token and exposes the identity context to downstream handlers.
func (g *HTTPGate) Protected() router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			bearer, err := g.bearerFromHeader(c)
			if err != nil {
				return g.ErrorHandler(c, err)
			}

			identity, err := g.validator.Validate(c.Context(), bearer)
			if err != nil {
				return g.ErrorHandler(c, err)
			}

			c.Locals(g.contextKey, identity)
			c.SetContext(WithIdentityContext(c.Context(), identity))

			return c.Next()
		}
	}
}

// IdentityFromRouterContext extracts the validated identity from the router
// context.
func IdentityFromRouterContext(c router.Context, key string) (*IdentityContext, bool) {
	if key == "" {
		key = DefaultContextKey
	}
	raw := c.Locals(key)
	if raw == nil {
		return nil, false
	}
	identity, ok := raw.(*IdentityContext)
	return identity, ok
}

func (g *HTTPGate) bearerFromHeader(c router.Context) (string, error) {
	header := c.GetString(router.HeaderAuthorization, "")
	scheme := strings.TrimSpace(g.authScheme)
	l := len(scheme)

	if len(header) > l+1 && strings.EqualFold(header[:l], scheme) {
		return strings.TrimSpace(header[l:]), nil
	}

	return "", errors.New("missing or malformed authorization header", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized)
}

func (g *HTTPGate) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected authentication error").
			WithCode(errors.CodeUnauthorized)
	}

	g.logger.Info(
		"Gate rejected request",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
	)

	return c.JSON(richErr.Code, map[string]any{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}
