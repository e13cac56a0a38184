package analysis

// Kalman1D is a minimal one-dimensional Kalman filter for smoothing a
// single noisy signal.
//
// q is the process noise (how much the true state moves between samples)
// and r the measurement noise. Typical tuning: q small (1e-3 to 1e-2), r
// set to the observed measurement variance.
type Kalman1D struct {
	q      float64
	r      float64
	x      float64
	p      float64
	primed bool
}

// NewKalman1D creates a filter with the given process and measurement noise.
func NewKalman1D(q, r float64) *Kalman1D {
	return &Kalman1D{q: q, r: r, p: 1}
}

// Update feeds measurement z and returns the filtered estimate.
func (k *Kalman1D) Update(z float64) float64 {
	if !k.primed {
		k.x = z
		k.p = 1
		k.primed = true
	}

	// Predict.
	k.p += k.q

	// Update.
	gain := k.p / (k.p + k.r)
	k.x += gain * (z - k.x)
	k.p *= 1 - gain
	return k.x
}

// Estimate returns the current state estimate and its covariance.
func (k *Kalman1D) Estimate() (x, p float64) {
	return k.x, k.p
}
