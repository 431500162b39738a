// Package credentials issues, validates, rotates, and revokes short-lived
// bearer credentials for an HTTP-facing service, and manages the single-use
// ephemeral secrets backing email verification and password reset flows.
//
// Tokens:
//   - Issuer mints access/refresh JWT pairs. Every issued token carries a
//     random jti and is tracked by a revocation entry in the CredentialStore
//     with a TTL matching the token's lifetime. A token validates only while
//     both its signature/expiry hold AND its revocation entry still exists,
//     which is what makes immediate server-side revocation possible.
//   - Validator is the per-request gate: signature, claim type, revocation
//     entry, and the embedded isActive/isVerified snapshot, in that order.
//   - Rotator consumes a refresh token and mints a fresh pair. There is no
//     lock across the read-check-delete-reissue sequence, so two concurrent
//     rotations of the same still-valid refresh token may both succeed.
//
// Ephemeral secrets:
//   - Password reset and email verification share the same state machine:
//     issue a random secret with a 600s TTL, optionally validate presence,
//     consume exactly once. Consumption deletes the secret before acting.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter. Session revocation is
//     best-effort: store failures during logout are logged and surfaced as
//     activity events rather than returned to the caller.
package credentials
