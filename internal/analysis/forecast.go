// Package analysis provides single-pass numeric helpers for the telemetry
// dashboard: an exponential moving average forecaster, a 1D Kalman filter
// for noisy sensor channels, and a harmonic-mean ETA predictor.
package analysis

import (
	"errors"
	"fmt"
)

// ErrNoSamples is returned when a prediction is requested before any
// observation has been fed in.
var ErrNoSamples = errors.New("analysis: no samples yet")

// EMAForecaster is a fast online exponential moving average forecaster.
// Higher alpha reacts faster to new data.
type EMAForecaster struct {
	alpha  float64
	level  float64
	primed bool
}

// NewEMAForecaster creates a forecaster with the given smoothing factor.
// alpha must lie in (0, 1].
func NewEMAForecaster(alpha float64) (*EMAForecaster, error) {
	if alpha <= 0 || alpha > 1 {
		return nil, fmt.Errorf("analysis: alpha %v outside (0, 1]", alpha)
	}
	return &EMAForecaster{alpha: alpha}, nil
}

// Update feeds a new observation and returns the updated average. The first
// observation seeds the level directly.
func (f *EMAForecaster) Update(value float64) float64 {
	if !f.primed {
		f.level = value
		f.primed = true
		return f.level
	}
	f.level = f.alpha*value + (1-f.alpha)*f.level
	return f.level
}

// Predict returns the forecast. For an EMA the horizon does not matter; the
// forecast is the current level.
func (f *EMAForecaster) Predict() (float64, error) {
	if !f.primed {
		return 0, ErrNoSamples
	}
	return f.level, nil
}
