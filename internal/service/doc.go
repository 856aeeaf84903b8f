// Package service contains the task use cases shared by the HTTP gateway and
// the operator CLI. It coordinates the domain types with a store.TaskStore
// and never depends on a concrete store implementation.
package service
