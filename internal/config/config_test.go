package config

import (
	"math"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"ADGAP_PORT", "ADGAP_DATA_PATH", "ADGAP_OUTPUT_DIR", "ADGAP_PROVIDERS",
		"ADGAP_APPLICATION_COLUMN", "ADGAP_AD_THRESHOLD", "ADGAP_AD_FREQ_THRESHOLD",
		"DATABASE_URL", "NATS_URL", "NATS_TOKEN", "LOG_LEVEL", "ADGAP_SERVE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != 8810 {
		t.Errorf("expected default port 8810, got %d", cfg.Port)
	}
	if cfg.ApplicationColumn != "application" {
		t.Errorf("expected default application column, got %s", cfg.ApplicationColumn)
	}
	if cfg.AdThreshold != 3 {
		t.Errorf("expected default ad threshold 3, got %d", cfg.AdThreshold)
	}
	if math.Abs(cfg.AdFreqThreshold-0.6) > 0.001 {
		t.Errorf("expected default ad frequency threshold 0.6, got %f", cfg.AdFreqThreshold)
	}
	if len(cfg.Providers) != 2 || cfg.Providers[0] != "Netflix" || cfg.Providers[1] != "Hulu" {
		t.Errorf("expected default providers [Netflix Hulu], got %v", cfg.Providers)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("expected empty default database url, got %s", cfg.DatabaseURL)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if !cfg.Serve {
		t.Error("expected serve enabled by default")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("ADGAP_PORT", "9001")
	t.Setenv("ADGAP_PROVIDERS", "Peacock, Max ,")
	t.Setenv("ADGAP_AD_THRESHOLD", "5")
	t.Setenv("ADGAP_AD_FREQ_THRESHOLD", "0.75")
	t.Setenv("ADGAP_APPLICATION_COLUMN", "app_name")
	t.Setenv("ADGAP_SERVE", "false")

	cfg := Load()

	if cfg.Port != 9001 {
		t.Errorf("expected port 9001, got %d", cfg.Port)
	}
	if len(cfg.Providers) != 2 || cfg.Providers[0] != "Peacock" || cfg.Providers[1] != "Max" {
		t.Errorf("expected providers [Peacock Max], got %v", cfg.Providers)
	}
	if cfg.AdThreshold != 5 {
		t.Errorf("expected ad threshold 5, got %d", cfg.AdThreshold)
	}
	if math.Abs(cfg.AdFreqThreshold-0.75) > 0.001 {
		t.Errorf("expected ad frequency threshold 0.75, got %f", cfg.AdFreqThreshold)
	}
	if cfg.ApplicationColumn != "app_name" {
		t.Errorf("expected application column app_name, got %s", cfg.ApplicationColumn)
	}
	if cfg.Serve {
		t.Error("expected serve disabled")
	}
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Setenv("ADGAP_PORT", "not-a-port")
	t.Setenv("ADGAP_AD_THRESHOLD", "three")
	t.Setenv("ADGAP_AD_FREQ_THRESHOLD", "most")

	cfg := Load()

	if cfg.Port != 8810 {
		t.Errorf("expected fallback port 8810, got %d", cfg.Port)
	}
	if cfg.AdThreshold != 3 {
		t.Errorf("expected fallback ad threshold 3, got %d", cfg.AdThreshold)
	}
	if math.Abs(cfg.AdFreqThreshold-0.6) > 0.001 {
		t.Errorf("expected fallback ad frequency threshold 0.6, got %f", cfg.AdFreqThreshold)
	}
}
