package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var validLengths = map[string]bool{"short": true, "medium": true, "long": true}

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// JWT secrets
	if len(c.JWT.AccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 characters")
	}
	if len(c.JWT.RefreshSecret) < 32 {
		errs = append(errs, "JWT_REFRESH_SECRET must be at least 32 characters")
	}
	if c.JWT.AccessSecret != "" && c.JWT.RefreshSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, "JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	// Encryption key: must be exactly 64 hex chars (32 bytes)
	if c.Encryption.Key == "" {
		errs = append(errs, "ENCRYPTION_KEY is required")
	} else if len(c.Encryption.Key) != 64 {
		errs = append(errs, "ENCRYPTION_KEY must be exactly 64 hex characters (32 bytes)")
	} else if _, err := hex.DecodeString(c.Encryption.Key); err != nil {
		errs = append(errs, "ENCRYPTION_KEY must be valid hex")
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}

	// Model provider
	if c.LLM.Provider == "openai" && c.LLM.APIKey == "" {
		errs = append(errs, "LLM_API_KEY is required when LLM_PROVIDER is openai")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Sprintf("LLM_TEMPERATURE must be 0-2, got %g", c.LLM.Temperature))
	}

	// Guest quota
	if c.Guest.Limit < 1 {
		errs = append(errs, fmt.Sprintf("GUEST_LIMIT must be positive, got %d", c.Guest.Limit))
	}
	if c.Guest.Window <= 0 {
		errs = append(errs, "GUEST_WINDOW must be a positive duration")
	}

	if !validLengths[c.Tone.DefaultLength] {
		errs = append(errs, fmt.Sprintf("TONE_DEFAULT_LENGTH must be short, medium or long, got %q", c.Tone.DefaultLength))
	}

	// Insecure guest cookie: warn only
	if !c.Guest.CookieSecure {
		slog.Warn("GUEST_COOKIE_SECURE is false, guest quota cookie will be sent over plain HTTP")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
