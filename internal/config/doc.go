// Package config loads the service configuration from an optional YAML file
// and TASKTRACKER_* environment variables, applies defaults, and validates
// the result before any component is constructed.
package config
