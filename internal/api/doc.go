// Package api contains the HTTP handlers of the task router: task submission,
// task status lookup and the health probe. Handlers translate requests into
// service calls and map service errors onto status codes and safe messages.
// Authentication and authorization happen in middleware before any handler
// runs.
package api
