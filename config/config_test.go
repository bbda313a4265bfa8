package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.CheckSchedule != "0 0 */12 * * *" {
		t.Errorf("CheckSchedule = %q", cfg.CheckSchedule)
	}
	if !cfg.CheckOnStart {
		t.Error("CheckOnStart should default to true")
	}
	if cfg.RateLimitRPS != 5 {
		t.Errorf("RateLimitRPS = %v, want 5", cfg.RateLimitRPS)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.Alerts.SMTPPort != "587" {
		t.Errorf("SMTPPort = %q, want 587", cfg.Alerts.SMTPPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CHECK_ON_START", "false")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("REQUEST_TIMEOUT", "90s")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.CheckOnStart {
		t.Error("CheckOnStart override not applied")
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Errorf("RateLimitRPS = %v, want 2.5", cfg.RateLimitRPS)
	}
	if cfg.RequestTimeout != 90*time.Second {
		t.Errorf("RequestTimeout = %v, want 90s", cfg.RequestTimeout)
	}
}

func TestGetEnvHelpersIgnoreGarbage(t *testing.T) {
	t.Setenv("CHECK_ON_START", "not-a-bool")
	t.Setenv("RATE_LIMIT_RPS", "fast")
	t.Setenv("REQUEST_TIMEOUT", "soon")

	cfg := Load()

	if !cfg.CheckOnStart {
		t.Error("unparsable bool should fall back to the default")
	}
	if cfg.RateLimitRPS != 5 {
		t.Errorf("unparsable float should fall back to 5, got %v", cfg.RateLimitRPS)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("unparsable duration should fall back to 30s, got %v", cfg.RequestTimeout)
	}
}
