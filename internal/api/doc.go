// Package api provides the HTTP client for the Primis REST backend.
//
// Every call goes through Client.Request, which attaches the bearer token
// found in storage under "access_token" and decodes non-2xx answers into
// *APIError values carrying the backend's "detail" message. Requests and
// answers are JSON over HTTP and take a context for cancellation.
//
// A 401 from any endpoint means the stored session is no longer valid: the
// client removes the token and the cached session snapshot, then notifies
// every subscriber registered with OnSessionInvalidated exactly once. What
// happens next (returning to a login screen, printing a hint) is up to the
// subscriber.
//
// Typed wrappers exist per resource group: auth, courses, attendance,
// payments, notifications and admin. Each is a single Request call.
package api
