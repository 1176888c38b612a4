// Package app wires application dependencies for the CLI.
//
// It loads Config from defaults, an optional .env file, PRIMIS_* environment
// variables and command-line flags (in rising order of precedence), then
// builds the storage backend, API client and session store, exposing them
// via the Wire struct for commands to use.
package app
