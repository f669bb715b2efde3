package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataPath != "billingpro.db" {
		t.Fatalf("DataPath = %q", cfg.DataPath)
	}
	if cfg.PaymentTermsDays != 30 {
		t.Fatalf("PaymentTermsDays = %d, want 30", cfg.PaymentTermsDays)
	}
	if cfg.BackupFrequency != "daily" || cfg.BackupTimeOfDay != "02:00" {
		t.Fatalf("backup schedule defaults wrong: %+v", cfg)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := "currency = \"EUR\"\nlow_stock_threshold = 9\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BILLINGPRO_CONFIG", path)
	t.Setenv("BILLINGPRO_CURRENCY", "GBP")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Currency != "GBP" {
		t.Fatalf("Currency = %q, env should win over file", cfg.Currency)
	}
	if cfg.LowStockThreshold != 9 {
		t.Fatalf("LowStockThreshold = %d, file should win over default", cfg.LowStockThreshold)
	}
}

func TestBadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("not toml ["), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BILLINGPRO_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}
