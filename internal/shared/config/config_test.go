package config

import (
	"strings"
	"testing"
)

// setRequiredEnvVars sets the minimum environment for Load to succeed.
func setRequiredEnvVars(t *testing.T) {
	t.Setenv("FIRESTORE_PROJECT_ID", "fresco-test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Sync.HistoryMonths != 3 {
		t.Errorf("Sync.HistoryMonths = %d, want 3", cfg.Sync.HistoryMonths)
	}
	if cfg.Sync.WindowDays != 180 {
		t.Errorf("Sync.WindowDays = %d, want 180", cfg.Sync.WindowDays)
	}
	if cfg.Sync.PageLimit != 1000 {
		t.Errorf("Sync.PageLimit = %d, want 1000", cfg.Sync.PageLimit)
	}
	if !cfg.Scheduler.Enabled {
		t.Error("Scheduler.Enabled = false, want true by default")
	}
	if len(cfg.Scheduler.ScheduleTimes) != 2 {
		t.Errorf("Scheduler.ScheduleTimes = %v, want two defaults", cfg.Scheduler.ScheduleTimes)
	}
	if cfg.TLS.Enabled {
		t.Error("TLS.Enabled = true, want false by default")
	}
	if cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = true, want false by default")
	}
}

func TestLoad_MissingProjectID(t *testing.T) {
	t.Setenv("FIRESTORE_PROJECT_ID", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for missing FIRESTORE_PROJECT_ID")
	}
	if !strings.Contains(err.Error(), "FIRESTORE_PROJECT_ID") {
		t.Errorf("error = %v, want mention of FIRESTORE_PROJECT_ID", err)
	}
}

func TestLoad_MissingPartnerCredentialsIsNotFatal(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("BANKFEED_PARTNER_ID", "")
	t.Setenv("BANKFEED_PARTNER_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Bankfeed.PartnerID != "" {
		t.Errorf("Bankfeed.PartnerID = %q, want empty", cfg.Bankfeed.PartnerID)
	}
}

func TestLoad_WindowDaysBounds(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid lower bound", "1", false},
		{"valid upper bound", "180", false},
		{"zero", "0", true},
		{"over the ceiling", "181", true},
		{"not a number", "six months", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnvVars(t)
			t.Setenv("SYNC_WINDOW_DAYS", tt.value)

			_, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_TLSRequiresPaths(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("TLS_ENABLED", "true")
	t.Setenv("TLS_CERT_PATH", "")
	t.Setenv("TLS_KEY_PATH", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error when TLS enabled without cert path")
	}

	t.Setenv("TLS_CERT_PATH", "/etc/ssl/fresco.crt")
	_, err = Load()
	if err == nil {
		t.Fatal("Load() expected error when TLS enabled without key path")
	}

	t.Setenv("TLS_KEY_PATH", "/etc/ssl/fresco.key")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if !cfg.TLS.Enabled {
		t.Error("TLS.Enabled = false, want true")
	}
}

func TestLoad_AllowedHosts(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("ALLOWED_HOSTS", "api.fresco.dev, fresco.dev ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if len(cfg.Server.AllowedHosts) != 2 {
		t.Fatalf("AllowedHosts = %v, want 2 entries", cfg.Server.AllowedHosts)
	}
	if cfg.Server.AllowedHosts[0] != "api.fresco.dev" || cfg.Server.AllowedHosts[1] != "fresco.dev" {
		t.Errorf("AllowedHosts = %v, want trimmed entries", cfg.Server.AllowedHosts)
	}
}

func TestGetBoolEnv(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue bool
		want         bool
	}{
		{"true", "true", false, true},
		{"one", "1", false, true},
		{"yes uppercase", "YES", false, true},
		{"false", "false", true, false},
		{"zero", "0", true, false},
		{"no", "no", true, false},
		{"empty uses default", "", true, true},
		{"garbage uses default", "maybe", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			if got := getBoolEnv("TEST_BOOL", tt.defaultValue); got != tt.want {
				t.Errorf("getBoolEnv(%q, %v) = %v, want %v", tt.value, tt.defaultValue, got, tt.want)
			}
		})
	}
}
