// Package session keeps track of who is signed in to Primis.
//
// The Store logs users in and out, persists the session snapshot so a later
// process can pick it up, and drops everything when the backend answers 401.
package session
