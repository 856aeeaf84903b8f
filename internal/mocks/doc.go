// Package mocks provides reusable function-field mocks for interfaces that
// several test packages need to fake.
//
// Each mock has one Fn field per method; when a field is nil the mock falls
// back to its fixed default values.
package mocks
