package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              int
	DataPath          string
	OutputDir         string
	Providers         []string
	ApplicationColumn string
	AdThreshold       int
	AdFreqThreshold   float64
	DatabaseURL       string
	NatsURL           string
	NatsToken         string
	LogLevel          string
	Serve             bool
}

func Load() Config {
	// Best-effort .env load; real env vars take precedence.
	_ = godotenv.Load()

	return Config{
		Port:              envInt("ADGAP_PORT", 8810),
		DataPath:          envStr("ADGAP_DATA_PATH", "./data/data.csv"),
		OutputDir:         envStr("ADGAP_OUTPUT_DIR", "./output"),
		Providers:         envList("ADGAP_PROVIDERS", []string{"Netflix", "Hulu"}),
		ApplicationColumn: envStr("ADGAP_APPLICATION_COLUMN", "application"),
		AdThreshold:       envInt("ADGAP_AD_THRESHOLD", 3),
		AdFreqThreshold:   envFloat("ADGAP_AD_FREQ_THRESHOLD", 0.6),
		DatabaseURL:       envStr("DATABASE_URL", ""),
		NatsURL:           envStr("NATS_URL", ""),
		NatsToken:         envStr("NATS_TOKEN", ""),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		Serve:             envBool("ADGAP_SERVE", true),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
