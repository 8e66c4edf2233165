// Package config holds the gameplay constants shared by the engine and its
// renderers, plus host settings loaded from YAML and the environment.
package config

import "os"

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// ApplyEnv overrides settings with ASTRDS_DB, SSH_HOST, SSH_PORT and
// SSH_HOST_KEY when they are set.
func (s *Settings) ApplyEnv() {
	s.DBPath = GetEnv("ASTRDS_DB", s.DBPath)
	s.SSH.Host = GetEnv("SSH_HOST", s.SSH.Host)
	s.SSH.Port = GetEnv("SSH_PORT", s.SSH.Port)
	s.SSH.HostKey = GetEnv("SSH_HOST_KEY", s.SSH.HostKey)
}
