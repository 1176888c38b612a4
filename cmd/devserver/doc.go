// Package main runs the in-memory Primis backend used during development and
// by the CLI's own tests. It serves the same routes as the real service under
// /api/v1 and is seeded with one account per role.
//
// Seeded accounts (password "pw123456")
//
//	student@example.com
//	teacher@example.com
//	admin@example.com
//	parent@example.com
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Responses are JSON. Errors carry {"detail": "..."}.
//   - Tokens are HS256 JWTs signed with --secret (PRIMIS_DEV_SECRET).
//   - Every request is access-logged through logrus.
//   - The default listen address is :8000.
//
// Point the CLI at it with `primis --api-url http://localhost:8000 login`.
package main
