// Package config
package config

// LogLevelFlag overrides the config file's supervisor.log_level.
var LogLevelFlag string

// ConfigFileFlag points at the top-level jobmon config YAML.
var ConfigFileFlag string

// ForegroundFlag keeps the daemon attached to its controlling terminal
// instead of backgrounding itself.
var ForegroundFlag bool
