package credentials

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// SessionRevoker bulk-invalidates every outstanding access and refresh token
// for a subject by deleting their revocation entries. The signed tokens stay
// cryptographically valid until natural expiry; deleting the entries is the
// mechanism of revocation, not a side effect.
//
// Revocation is best-effort: store failures are logged and emitted as an
// activity event, and logout still acknowledges. Validation failing closed is
// what keeps that policy safe.
type SessionRevoker struct {
	signer   *Signer
	store    CredentialStore
	logger   Logger
	activity ActivitySink
}

// NewSessionRevoker creates a SessionRevoker.
func NewSessionRevoker(signer *Signer, store CredentialStore) *SessionRevoker {
	return &SessionRevoker{
		signer:   signer,
		store:    store,
		logger:   defLogger{},
		activity: noopActivitySink{},
	}
}

// WithLogger overrides the logger used by the revoker.
func (r *SessionRevoker) WithLogger(logger Logger) *SessionRevoker {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// WithActivitySink sets the sink used to emit revocation events.
func (r *SessionRevoker) WithActivitySink(sink ActivitySink) *SessionRevoker {
	r.activity = normalizeActivitySink(sink)
	return r
}

// Revoke invalidates sessions for a subject. At least one of subjectID or
// refreshToken must resolve to a subject. When the refresh token decodes, its
// individual jti entry is deleted first; decoding skips signature and expiry
// checks on purpose so an expired token still names the session to drop.
func (r *SessionRevoker) Revoke(ctx context.Context, subjectID, refreshToken string) error {
	degraded := false

	if refreshToken != "" {
		if claims, err := r.signer.DecodeRefresh(refreshToken); err == nil && claims.Subject != "" {
			if subjectID == "" {
				subjectID = claims.Subject
			}
			if claims.ID != "" {
				if err := r.store.Delete(ctx, refreshEntryKey(claims.Subject, claims.ID)); err != nil {
					r.logger.Warn("SessionRevoker failed to delete refresh entry", "error", err)
					degraded = true
				}
			}
		}
	}

	if subjectID == "" {
		return errors.New("no subject resolvable for session revocation", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	for _, pattern := range []string{accessEntryPattern(subjectID), refreshEntryPattern(subjectID)} {
		keys, err := r.store.Scan(ctx, pattern)
		if err != nil {
			r.logger.Warn("SessionRevoker scan failed", "pattern", pattern, "error", err)
			degraded = true
			continue
		}
		if len(keys) == 0 {
			continue
		}
		if err := r.store.Delete(ctx, keys...); err != nil {
			r.logger.Warn("SessionRevoker bulk delete failed", "pattern", pattern, "error", err)
			degraded = true
		}
	}

	r.recordActivity(ctx, subjectID, degraded)

	return nil
}

func (r *SessionRevoker) recordActivity(ctx context.Context, subjectID string, degraded bool) {
	eventType := ActivityEventSessionRevoked
	if degraded {
		eventType = ActivityEventSessionRevokeDegraded
	}

	event := ActivityEvent{
		EventType:  eventType,
		Actor:      ActorRef{ID: subjectID, Type: "user"},
		UserID:     subjectID,
		OccurredAt: time.Now(),
	}

	if err := r.activity.Record(ctx, event); err != nil {
		r.logger.Warn("activity sink error during session revocation: %v", err)
	}
}
