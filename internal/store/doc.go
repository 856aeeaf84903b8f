// Package store defines the persistence contract for task records and their
// work queues. Implementations live under internal/platform; business logic
// depends only on the interfaces and sentinel errors declared here.
package store
