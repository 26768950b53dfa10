package config

import (
	"strings"
	"testing"
	"time"
)

// setRequiredEnv выставляет минимальный валидный набор переменных
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BITUNIX_API_KEY", "key")
	t.Setenv("BITUNIX_SECRET_KEY", "secret")
	t.Setenv("INTERACTIVE", "true")
}

// TestLoad_Defaults проверяет значения по умолчанию
func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Exchange.BaseURL != "https://api.bitunix.com" {
		t.Errorf("BaseURL = %s, want https://api.bitunix.com", cfg.Exchange.BaseURL)
	}
	if cfg.Bot.PollInterval != 1*time.Second {
		t.Errorf("PollInterval = %v, want 1s", cfg.Bot.PollInterval)
	}
	if cfg.Bot.RecoveryDelay != 10*time.Second {
		t.Errorf("RecoveryDelay = %v, want 10s", cfg.Bot.RecoveryDelay)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json", cfg.Logging)
	}
}

// TestLoad_Overrides проверяет чтение переменных окружения
func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BITUNIX_BASE_URL", "https://mock.example")
	t.Setenv("POLL_INTERVAL", "2s")
	t.Setenv("RECOVERY_DELAY", "30s")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Exchange.BaseURL != "https://mock.example" {
		t.Errorf("BaseURL = %s, want override", cfg.Exchange.BaseURL)
	}
	if cfg.Bot.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %v, want 2s", cfg.Bot.PollInterval)
	}
	if cfg.Bot.RecoveryDelay != 30*time.Second {
		t.Errorf("RecoveryDelay = %v, want 30s", cfg.Bot.RecoveryDelay)
	}
	if cfg.Server.Addr() != "0.0.0.0:9090" {
		t.Errorf("Addr() = %s, want 0.0.0.0:9090", cfg.Server.Addr())
	}
}

// TestLoad_Validation проверяет отклонение невалидных конфигураций
func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing api key",
			env:     map[string]string{"BITUNIX_SECRET_KEY": "s", "INTERACTIVE": "true"},
			wantErr: "BITUNIX_API_KEY",
		},
		{
			name:    "missing secret",
			env:     map[string]string{"BITUNIX_API_KEY": "k", "INTERACTIVE": "true"},
			wantErr: "BITUNIX_SECRET_KEY",
		},
		{
			name: "plain and encrypted secret together",
			env: map[string]string{
				"BITUNIX_API_KEY":        "k",
				"BITUNIX_SECRET_KEY":     "s",
				"BITUNIX_SECRET_KEY_ENC": "abc",
				"INTERACTIVE":            "true",
			},
			wantErr: "mutually exclusive",
		},
		{
			name: "encrypted secret without encryption key",
			env: map[string]string{
				"BITUNIX_API_KEY":        "k",
				"BITUNIX_SECRET_KEY_ENC": "abc",
				"INTERACTIVE":            "true",
			},
			wantErr: "ENCRYPTION_KEY",
		},
		{
			name: "encryption key wrong length",
			env: map[string]string{
				"BITUNIX_API_KEY":        "k",
				"BITUNIX_SECRET_KEY_ENC": "abc",
				"ENCRYPTION_KEY":         "short",
				"INTERACTIVE":            "true",
			},
			wantErr: "32 bytes",
		},
		{
			name: "api mode without token hash",
			env: map[string]string{
				"BITUNIX_API_KEY":    "k",
				"BITUNIX_SECRET_KEY": "s",
			},
			wantErr: "API_TOKEN_HASH",
		},
		{
			name: "recovery delay shorter than poll interval",
			env: map[string]string{
				"BITUNIX_API_KEY":    "k",
				"BITUNIX_SECRET_KEY": "s",
				"INTERACTIVE":        "true",
				"POLL_INTERVAL":      "5s",
				"RECOVERY_DELAY":     "1s",
			},
			wantErr: "RECOVERY_DELAY",
		},
		{
			name: "invalid port",
			env: map[string]string{
				"BITUNIX_API_KEY":    "k",
				"BITUNIX_SECRET_KEY": "s",
				"INTERACTIVE":        "true",
				"SERVER_PORT":        "70000",
			},
			wantErr: "SERVER_PORT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Изоляция от окружения хоста
			for _, k := range []string{
				"BITUNIX_API_KEY", "BITUNIX_SECRET_KEY", "BITUNIX_SECRET_KEY_ENC",
				"ENCRYPTION_KEY", "API_TOKEN_HASH", "INTERACTIVE",
				"POLL_INTERVAL", "RECOVERY_DELAY", "SERVER_PORT",
			} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("Load() error = nil, want validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
