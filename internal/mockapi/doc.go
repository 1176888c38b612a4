// Package mockapi is an in-memory stand-in for the Primis REST backend,
// used by tests and by cmd/devserver.
//
// It speaks the same wire format as the real service: JSON bodies, HS256
// bearer tokens carrying sub, user_type and email claims, and errors shaped
// as {"detail": "..."}. All state is held in memory and lost on exit.
//
// Test knobs:
//   - SetFailProfile makes GET /auth/me fail with 500.
//   - RevokeAll rejects every token issued so far with 401.
//   - LogoutCalls counts POST /auth/logout hits.
//   - ResetToken exposes the token a password-reset mail would carry.
package mockapi
