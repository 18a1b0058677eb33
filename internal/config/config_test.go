package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("got port %s, want 8080", cfg.Port)
	}
	if cfg.DBPath != "trading.db" {
		t.Errorf("got db path %s, want trading.db", cfg.DBPath)
	}
	if cfg.SweepInterval != 30*time.Second {
		t.Errorf("got sweep interval %v, want 30s", cfg.SweepInterval)
	}
	if cfg.TickInterval != 5*time.Second {
		t.Errorf("got tick interval %v, want 5s", cfg.TickInterval)
	}
	if cfg.Debug {
		t.Error("debug should default to off")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/test.db")
	t.Setenv("JWT_SECRET", "override-secret")
	t.Setenv("DEBUG", "true")
	t.Setenv("SWEEP_INTERVAL", "10s")
	t.Setenv("TICK_INTERVAL", "1s")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("got port %s, want 9090", cfg.Port)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("got db path %s, want /tmp/test.db", cfg.DBPath)
	}
	if cfg.JWTSecret != "override-secret" {
		t.Errorf("got jwt secret %s, want override-secret", cfg.JWTSecret)
	}
	if !cfg.Debug {
		t.Error("debug should be on")
	}
	if cfg.SweepInterval != 10*time.Second {
		t.Errorf("got sweep interval %v, want 10s", cfg.SweepInterval)
	}
	if cfg.TickInterval != time.Second {
		t.Errorf("got tick interval %v, want 1s", cfg.TickInterval)
	}
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "not-a-duration")

	cfg := Load()
	if cfg.SweepInterval != 30*time.Second {
		t.Errorf("got sweep interval %v, want 30s fallback", cfg.SweepInterval)
	}
}
