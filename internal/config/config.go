// Package config loads the ground station configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Defaults applied when a field is omitted from the config file.
const (
	DefaultPollInterval    = "1s"
	DefaultStaleAfter      = "3s"
	DefaultHistoryLimit    = 5000
	DefaultRiskRows        = 20
	DefaultRiskCols        = 20
	DefaultRiskDecay       = 0.01
	DefaultRiskWeight      = 0.5
	DefaultDiagonalPenalty = 0.05
)

// Config holds the ground station settings. All fields are optional in the
// JSON file; the Get* methods provide fallback defaults, so partial configs
// are safe.
type Config struct {
	// Endpoints
	SensorURL     *string `json:"sensor_url,omitempty"`
	ControllerURL *string `json:"controller_url,omitempty"`
	CameraURL     *string `json:"camera_url,omitempty"`
	NetworkURL    *string `json:"network_url,omitempty"`

	// Telemetry loop
	PollInterval *string `json:"poll_interval,omitempty"` // duration string like "1s"
	StaleAfter   *string `json:"stale_after,omitempty"`   // duration string like "3s"
	HistoryLimit *int    `json:"history_limit,omitempty"`

	// Risk heatmap
	RiskRows        *int     `json:"risk_rows,omitempty"`
	RiskCols        *int     `json:"risk_cols,omitempty"`
	RiskDecayPerSec *float64 `json:"risk_decay_per_sec,omitempty"`

	// Planner defaults, used when a plan request omits them
	RiskWeight      *float64 `json:"risk_weight,omitempty"`
	DiagonalPenalty *float64 `json:"diagonal_penalty,omitempty"`
}

// Load reads a Config from a JSON file. The path must have a .json
// extension and stay under the size cap.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects values that would put the station in a broken state.
func (c *Config) Validate() error {
	if c.PollInterval != nil {
		if d, err := time.ParseDuration(*c.PollInterval); err != nil || d <= 0 {
			return fmt.Errorf("poll_interval %q is not a positive duration", *c.PollInterval)
		}
	}
	if c.StaleAfter != nil {
		if d, err := time.ParseDuration(*c.StaleAfter); err != nil || d <= 0 {
			return fmt.Errorf("stale_after %q is not a positive duration", *c.StaleAfter)
		}
	}
	if c.HistoryLimit != nil && *c.HistoryLimit < 1 {
		return fmt.Errorf("history_limit %d must be at least 1", *c.HistoryLimit)
	}
	if c.RiskRows != nil && *c.RiskRows < 1 {
		return fmt.Errorf("risk_rows %d must be at least 1", *c.RiskRows)
	}
	if c.RiskCols != nil && *c.RiskCols < 1 {
		return fmt.Errorf("risk_cols %d must be at least 1", *c.RiskCols)
	}
	if c.RiskDecayPerSec != nil && (*c.RiskDecayPerSec < 0 || *c.RiskDecayPerSec >= 1) {
		return fmt.Errorf("risk_decay_per_sec %v must lie in [0, 1)", *c.RiskDecayPerSec)
	}
	if c.RiskWeight != nil && *c.RiskWeight < 0 {
		return fmt.Errorf("risk_weight %v must be non-negative", *c.RiskWeight)
	}
	if c.DiagonalPenalty != nil && *c.DiagonalPenalty < 0 {
		return fmt.Errorf("diagonal_penalty %v must be non-negative", *c.DiagonalPenalty)
	}
	return nil
}

func (c *Config) GetSensorURL() string {
	if c != nil && c.SensorURL != nil {
		return *c.SensorURL
	}
	return "http://192.168.1.60/sensors"
}

func (c *Config) GetControllerURL() string {
	if c != nil && c.ControllerURL != nil {
		return *c.ControllerURL
	}
	return "http://192.168.1.61"
}

func (c *Config) GetCameraURL() string {
	if c != nil && c.CameraURL != nil {
		return *c.CameraURL
	}
	return "http://192.168.1.5:8000/stream"
}

func (c *Config) GetNetworkURL() string {
	if c != nil && c.NetworkURL != nil {
		return *c.NetworkURL
	}
	return "http://192.168.1.61/network"
}

func (c *Config) GetPollInterval() time.Duration {
	if c != nil && c.PollInterval != nil {
		if d, err := time.ParseDuration(*c.PollInterval); err == nil {
			return d
		}
	}
	d, _ := time.ParseDuration(DefaultPollInterval)
	return d
}

func (c *Config) GetStaleAfter() time.Duration {
	if c != nil && c.StaleAfter != nil {
		if d, err := time.ParseDuration(*c.StaleAfter); err == nil {
			return d
		}
	}
	d, _ := time.ParseDuration(DefaultStaleAfter)
	return d
}

func (c *Config) GetHistoryLimit() int {
	if c != nil && c.HistoryLimit != nil {
		return *c.HistoryLimit
	}
	return DefaultHistoryLimit
}

func (c *Config) GetRiskRows() int {
	if c != nil && c.RiskRows != nil {
		return *c.RiskRows
	}
	return DefaultRiskRows
}

func (c *Config) GetRiskCols() int {
	if c != nil && c.RiskCols != nil {
		return *c.RiskCols
	}
	return DefaultRiskCols
}

func (c *Config) GetRiskDecayPerSec() float64 {
	if c != nil && c.RiskDecayPerSec != nil {
		return *c.RiskDecayPerSec
	}
	return DefaultRiskDecay
}

func (c *Config) GetRiskWeight() float64 {
	if c != nil && c.RiskWeight != nil {
		return *c.RiskWeight
	}
	return DefaultRiskWeight
}

func (c *Config) GetDiagonalPenalty() float64 {
	if c != nil && c.DiagonalPenalty != nil {
		return *c.DiagonalPenalty
	}
	return DefaultDiagonalPenalty
}
