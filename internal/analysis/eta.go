package analysis

import (
	"gonum.org/v1/gonum/stat"
)

// DefaultETAWindow is the number of recent speed samples kept by an
// ETAPredictor when none is specified.
const DefaultETAWindow = 30

// defaultMinSpeed is the floor applied to speed samples and to the blended
// speed, so a stationary robot yields a large but finite ETA.
const defaultMinSpeed = 0.05

// ETAPredictor estimates arrival time from the remaining distance along the
// planned route and a rolling window of recent speed samples. The blended
// speed is a harmonic mean, which is less biased by occasional spikes than
// an arithmetic mean.
type ETAPredictor struct {
	window int
	speeds []float64
}

// NewETAPredictor creates a predictor keeping up to window speed samples.
// A non-positive window falls back to DefaultETAWindow.
func NewETAPredictor(window int) *ETAPredictor {
	if window <= 0 {
		window = DefaultETAWindow
	}
	return &ETAPredictor{window: window}
}

// UpdateSpeed adds a speed sample in metres per second. Negative samples
// are clamped to zero.
func (p *ETAPredictor) UpdateSpeed(speedMPS float64) {
	if speedMPS < 0 {
		speedMPS = 0
	}
	p.speeds = append(p.speeds, speedMPS)
	if len(p.speeds) > p.window {
		p.speeds = p.speeds[len(p.speeds)-p.window:]
	}
}

// ETASeconds returns the estimated seconds to cover remainingDistanceM.
// With no usable samples the speed clamps to the minimum, so the estimate
// is pessimistic rather than infinite.
func (p *ETAPredictor) ETASeconds(remainingDistanceM float64) float64 {
	v := defaultMinSpeed
	// Zero samples are dropped entirely; the rest are floored at the
	// minimum speed before blending.
	clamped := make([]float64, 0, len(p.speeds))
	for _, s := range p.speeds {
		if s <= 0 {
			continue
		}
		if s < defaultMinSpeed {
			s = defaultMinSpeed
		}
		clamped = append(clamped, s)
	}
	if len(clamped) > 0 {
		if hm := stat.HarmonicMean(clamped, nil); hm > v {
			v = hm
		}
	}
	return remainingDistanceM / v
}
