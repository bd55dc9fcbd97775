package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid sqlite backend config",
			config: Config{
				Port:            "8082",
				DataBackend:     "sqlite",
				SQLiteDBPath:    "./test.db",
				MetricsCacheTTL: 5 * time.Minute,
			},
			wantErr: false,
		},
		{
			name: "valid memory backend config",
			config: Config{
				Port:            "8082",
				DataBackend:     "memory",
				MetricsCacheTTL: time.Minute,
			},
			wantErr: false,
		},
		{
			name: "invalid port - non-numeric",
			config: Config{
				Port:            "abc",
				DataBackend:     "memory",
				MetricsCacheTTL: time.Minute,
			},
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name: "invalid port - out of range",
			config: Config{
				Port:            "70000",
				DataBackend:     "memory",
				MetricsCacheTTL: time.Minute,
			},
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name: "invalid data backend",
			config: Config{
				Port:            "8082",
				DataBackend:     "postgres",
				MetricsCacheTTL: time.Minute,
			},
			wantErr:     true,
			errorString: "invalid data backend 'postgres'",
		},
		{
			name: "sqlite backend without db path",
			config: Config{
				Port:            "8082",
				DataBackend:     "sqlite",
				SQLiteDBPath:    "",
				MetricsCacheTTL: time.Minute,
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty",
		},
		{
			name: "cache TTL too small",
			config: Config{
				Port:            "8082",
				DataBackend:     "memory",
				MetricsCacheTTL: 100 * time.Millisecond,
			},
			wantErr:     true,
			errorString: "must be at least 1 second",
		},
		{
			name: "cache TTL too large",
			config: Config{
				Port:            "8082",
				DataBackend:     "memory",
				MetricsCacheTTL: 48 * time.Hour,
			},
			wantErr:     true,
			errorString: "must be at most 24 hours",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errorString)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestConfig_ValidateCreatesDBDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	cfg := Config{
		Port:            "8082",
		DataBackend:     "sqlite",
		SQLiteDBPath:    filepath.Join(dir, "sanko.db"),
		MetricsCacheTTL: time.Minute,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port == "" || cfg.SQLiteDBPath == "" || cfg.DataBackend == "" {
		t.Errorf("Load() left required defaults empty: %+v", cfg)
	}
	if cfg.MetricsCacheTTL <= 0 {
		t.Errorf("Load() default cache TTL = %v", cfg.MetricsCacheTTL)
	}
}
