package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"debug": true,
		"database": {"path": "data/site.db"},
		"jwt": {"secret": "test-secret"}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d", cfg.Server.Port)
	}
	if cfg.Rotation.Timezone != "UTC" {
		t.Errorf("default rotation tz = %s", cfg.Rotation.Timezone)
	}
	if cfg.Rotation.RecentN != 5 {
		t.Errorf("default recentN = %d", cfg.Rotation.RecentN)
	}
	if cfg.Stripe.Currency != "usd" {
		t.Errorf("default currency = %s", cfg.Stripe.Currency)
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	path := writeConfig(t, `{
		"debug": true,
		"database": {"path": "data/site.db"},
		"jwt": {"secret": "test-secret"},
		"rotation": {"timezone": "Mars/Olympus_Mons"}
	}`)

	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	path := writeConfig(t, `{
		"debug": false,
		"database": {"path": "data/site.db"}
	}`)

	if _, err := Load(path); err == nil {
		t.Error("expected error for missing JWT secret outside debug")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `{
		"debug": true,
		"database": {"path": "data/site.db"},
		"jwt": {"secret": "test-secret"}
	}`)

	t.Setenv("PORT", "9090")
	t.Setenv("ROTATION_TZ", "America/Chicago")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_abc")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Rotation.Timezone != "America/Chicago" {
		t.Errorf("tz = %s", cfg.Rotation.Timezone)
	}
	if cfg.Stripe.SecretKey != "sk_test_abc" {
		t.Errorf("stripe key = %s", cfg.Stripe.SecretKey)
	}
}
