// Package commands defines the primis CLI and wires dependencies for subcommands.
//
// Commands
//
//   - login, logout, whoami   Manage the stored session
//   - register                Create a student account
//   - password                Forgot, reset and change passwords
//   - courses                 Browse, create and enroll in courses
//   - attendance              Mark, scan and report attendance
//   - payments                Review payments
//   - notifications           Read and manage notifications
//   - admin                   Dashboards and user management
//   - request                 Send any call under /api/
//
// # Implementation
//
// The root command loads configuration and builds the dependency graph
// (storage, API client, session store) before any subcommand runs. When the
// backend answers 401 the stored session is dropped and a hint to log in
// again is printed on stderr.
package commands
