// Package testutils holds helpers shared by tests across packages: an
// in-memory Redis-backed task store, credential builders for the two
// Authorization schemes, and HTTP request and assertion helpers.
package testutils
