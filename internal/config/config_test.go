package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "station.json", `{"sensor_url": "http://10.0.0.9/sensors", "poll_interval": "2s"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.GetSensorURL(); got != "http://10.0.0.9/sensors" {
		t.Errorf("GetSensorURL() = %q", got)
	}
	if got := cfg.GetPollInterval(); got != 2*time.Second {
		t.Errorf("GetPollInterval() = %v, want 2s", got)
	}
	if got := cfg.GetHistoryLimit(); got != DefaultHistoryLimit {
		t.Errorf("GetHistoryLimit() = %d, want default %d", got, DefaultHistoryLimit)
	}
	if got := cfg.GetRiskDecayPerSec(); got != DefaultRiskDecay {
		t.Errorf("GetRiskDecayPerSec() = %v, want default %v", got, DefaultRiskDecay)
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	path := writeConfig(t, "station.yaml", `{}`)
	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want extension error")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeConfig(t, "station.json", `{"poll_interval": `)
	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Load() error = nil, want stat error")
	}
}

func TestValidate(t *testing.T) {
	strPtr := func(s string) *string { return &s }
	intPtr := func(v int) *int { return &v }
	floatPtr := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty", Config{}, false},
		{"valid durations", Config{PollInterval: strPtr("500ms"), StaleAfter: strPtr("3s")}, false},
		{"bad poll interval", Config{PollInterval: strPtr("soon")}, true},
		{"negative poll interval", Config{PollInterval: strPtr("-1s")}, true},
		{"zero history limit", Config{HistoryLimit: intPtr(0)}, true},
		{"zero risk rows", Config{RiskRows: intPtr(0)}, true},
		{"decay at one", Config{RiskDecayPerSec: floatPtr(1.0)}, true},
		{"negative risk weight", Config{RiskWeight: floatPtr(-0.5)}, true},
		{"negative diagonal penalty", Config{DiagonalPenalty: floatPtr(-0.1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
