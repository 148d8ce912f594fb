package config

import "testing"

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected Load to fail without AUTH_JWT_SECRET")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "unit-test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Auth.JWTSecret != "unit-test-secret" {
		t.Error("secret not carried through")
	}
	if got := cfg.Auth.SessionTTL().Hours(); got != 168 {
		t.Errorf("session ttl = %v hours, want 168", got)
	}
	if cfg.RateLimit.SweepInterval().Seconds() != 60 {
		t.Errorf("sweep interval = %v, want 60s", cfg.RateLimit.SweepInterval())
	}
}
