// Package store provides durable client-side storage for the signed-in session.
//
// It contains concrete implementations of domain.Storage, a small key/value
// contract holding two entries: the bearer token (access_token) and the
// serialised session snapshot (auth-storage). All methods are
// concurrency-safe.
//
// The package includes:
//   - FileStorage: one file per key under the user's home directory, written
//     atomically, optionally sealed with a passphrase
//   - RedisStorage: keys in a shared Redis instance
//   - MemoryStorage: process-local, for tests and throwaway sessions
package store
