// Package server implements the HTTP server and HTTP handlers for the
// PIN vault. It wires together the HTTP routes, dependencies (database,
// object store), and provides lifecycle helpers used by tests and the
// production binary.
package server
