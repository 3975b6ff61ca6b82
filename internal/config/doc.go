// Package config loads courier settings from defaults, an optional YAML
// file, .env files and the process environment, in that order
package config
