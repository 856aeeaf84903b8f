// Package domain defines the core business entities of the task router: task
// records, their types and statuses, and the caller identity resolved by the
// identity provider. It has no dependencies on storage or transport.
package domain
