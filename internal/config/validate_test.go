package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		DB: DBConfig{
			Host: "localhost", Port: 5432, User: "replywise",
			Password: "secret", Name: "replywise", SSLMode: "disable", MaxConns: 25,
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		JWT: JWTConfig{
			AccessSecret:  "access-secret-that-is-at-least-32-chars!",
			RefreshSecret: "refresh-secret-that-is-at-least-32-chr!",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
		},
		Encryption: EncryptionConfig{Key: "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"},
		LLM:        LLMConfig{Provider: "openai", Model: "gpt-4o-mini", APIKey: "sk-test", Temperature: 0.7},
		Guest:      GuestConfig{Limit: 3, Window: 24 * time.Hour, CookieName: "guest_generations", CookieSecure: true},
		Tone:       ToneConfig{DefaultLength: "medium"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_JWTAccessSecretTooShort(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.AccessSecret = "short"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "JWT_ACCESS_SECRET") {
		t.Fatalf("expected JWT_ACCESS_SECRET error, got: %v", err)
	}
}

func TestValidate_JWTSecretsMustDiffer(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.AccessSecret = "the-same-secret-that-is-at-least-32-chars!"
	cfg.JWT.RefreshSecret = "the-same-secret-that-is-at-least-32-chars!"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("expected 'must differ' error, got: %v", err)
	}
}

func TestValidate_EncryptionKeyInvalidHex(t *testing.T) {
	cfg := validConfig()
	cfg.Encryption.Key = "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "valid hex") {
		t.Fatalf("expected valid hex error, got: %v", err)
	}
}

func TestValidate_OpenAIRequiresAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.APIKey = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "LLM_API_KEY") {
		t.Fatalf("expected LLM_API_KEY error, got: %v", err)
	}

	cfg.LLM.Provider = "echo"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("echo provider needs no key, got: %v", err)
	}
}

func TestValidate_GuestQuota(t *testing.T) {
	cfg := validConfig()
	cfg.Guest.Limit = 0
	cfg.Guest.Window = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected guest validation errors")
	}
	for _, substr := range []string{"GUEST_LIMIT", "GUEST_WINDOW"} {
		if !strings.Contains(err.Error(), substr) {
			t.Errorf("expected %q in error: %v", substr, err)
		}
	}
}

func TestValidate_DefaultLength(t *testing.T) {
	cfg := validConfig()
	cfg.Tone.DefaultLength = "huge"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "TONE_DEFAULT_LENGTH") {
		t.Fatalf("expected TONE_DEFAULT_LENGTH error, got: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 0},
		DB:     DBConfig{Port: 5432},
		Redis:  RedisConfig{Port: 6379},
		LLM:    LLMConfig{Provider: "openai"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected multiple validation errors")
	}
	errStr := err.Error()
	for _, substr := range []string{"JWT_ACCESS_SECRET", "ENCRYPTION_KEY", "DB_PASSWORD", "SERVER_PORT", "LLM_API_KEY", "GUEST_LIMIT"} {
		if !strings.Contains(errStr, substr) {
			t.Errorf("expected %q in error: %s", substr, errStr)
		}
	}
}

func TestLoad_EnvOverridesAndDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("GUEST_LIMIT", "5")
	t.Setenv("GUEST_WINDOW", "12h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LLM_TEMPERATURE", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Guest.Limit != 5 || cfg.Guest.Window != 12*time.Hour {
		t.Errorf("unexpected guest config: %+v", cfg.Guest)
	}
	if cfg.Guest.CookieName != "guest_generations" {
		t.Errorf("expected default cookie name, got %q", cfg.Guest.CookieName)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.LLM.Temperature != 0 {
		t.Errorf("explicit zero temperature should be kept, got %g", cfg.LLM.Temperature)
	}
	if cfg.Tone.DefaultLength != "medium" {
		t.Errorf("expected default length medium, got %q", cfg.Tone.DefaultLength)
	}
}

func TestLoad_InvalidGuestWindow(t *testing.T) {
	t.Setenv("GUEST_WINDOW", "tomorrow")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid guest window")
	}
}
