package config

import (
	"testing"
	"time"
)

func validTestConfig() *Config {
	return &Config{
		Influx: InfluxConfig{
			URL:    "http://localhost:8086",
			Org:    "ranchwatch",
			Bucket: "telemetry",
		},
		Query: QueryConfig{
			Lookback: 7 * 24 * time.Hour,
		},
	}
}

func TestValidateConfig(t *testing.T) {
	if err := validateConfig(validTestConfig()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing url", func(c *Config) { c.Influx.URL = "" }},
		{"missing org", func(c *Config) { c.Influx.Org = "" }},
		{"missing bucket", func(c *Config) { c.Influx.Bucket = "" }},
		{"zero lookback", func(c *Config) { c.Query.Lookback = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig()
			tc.mutate(cfg)
			if err := validateConfig(cfg); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadFailsWithoutInfluxOrg(t *testing.T) {
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when influx org is not configured")
	}
}
