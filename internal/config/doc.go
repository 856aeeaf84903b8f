// Package config loads the router's settings from an optional config file, an
// optional secrets file merged on top of it, and TASKROUTER_* environment
// variables, then validates the result. The loaded Config is read-only.
package config
