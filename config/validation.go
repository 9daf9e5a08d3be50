package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that every value the server cannot run without is
// present. Development and test get defaults from the loader, so what is
// left to check is the same across environments.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT secret is required (JWT_SECRET or jwt_secret secret)")
	}
	if cfg.ServerPort == "" {
		errors = append(errors, "server port is required")
	}
	if cfg.DBHost == "" || cfg.DBPort == "" {
		errors = append(errors, "database host and port are required")
	}
	if cfg.DBUser == "" || cfg.DBName == "" {
		errors = append(errors, "database user and name are required")
	}
	if GetEnvironment() == Production && cfg.DBPassword == "" {
		errors = append(errors, "db_password secret is required in production")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
