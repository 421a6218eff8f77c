// Package config provides application configuration loaded from environment
// variables (FW_ prefix) merged with an optional YAML file, plus the
// centralized Paths layout every component resolves file locations through.
package config
