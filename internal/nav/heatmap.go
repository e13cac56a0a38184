package nav

import (
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/inzora-robotics/groundlink/internal/timeutil"
)

// RiskHeatmap maintains a hazard intensity field that exponentially forgets
// past observations. It persists across many planning queries and is the
// only shared mutable state in the package; all methods are safe for
// concurrent use.
//
// Decay is applied lazily on every access: after elapsed time dt, every cell
// is scaled by max(0, 1 - decayPerSec*dt). No background goroutine runs.
type RiskHeatmap struct {
	mu          sync.Mutex
	clock       timeutil.Clock
	decayPerSec float64
	rows        int
	cols        int
	values      [][]float64
	lastDecay   time.Time
}

// NewRiskHeatmap creates a zeroed rows x cols heatmap. decayPerSec must lie
// in [0, 1). A nil clock falls back to the real clock.
func NewRiskHeatmap(rows, cols int, decayPerSec float64, clock timeutil.Clock) (*RiskHeatmap, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: heatmap dimensions %dx%d", ErrInvalidGrid, rows, cols)
	}
	if decayPerSec < 0 || decayPerSec >= 1 {
		return nil, fmt.Errorf("nav: decay rate %v outside [0, 1)", decayPerSec)
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	values := make([][]float64, rows)
	for r := range values {
		values[r] = make([]float64, cols)
	}
	return &RiskHeatmap{
		clock:       clock,
		decayPerSec: decayPerSec,
		rows:        rows,
		cols:        cols,
		values:      values,
		lastDecay:   clock.Now(),
	}, nil
}

// Dims returns the heatmap dimensions.
func (h *RiskHeatmap) Dims() (rows, cols int) {
	return h.rows, h.cols
}

// applyDecayLocked scales every cell by the decay factor for the time
// elapsed since the last application. Idempotent when no time has passed.
// Callers must hold h.mu.
func (h *RiskHeatmap) applyDecayLocked() {
	now := h.clock.Now()
	dt := now.Sub(h.lastDecay).Seconds()
	if dt <= 0 {
		return
	}
	h.lastDecay = now
	factor := 1 - h.decayPerSec*dt
	if factor < 0 {
		factor = 0
	}
	if factor == 1 {
		return
	}
	for r := range h.values {
		floats.Scale(factor, h.values[r])
	}
}

// Reinforce applies pending decay, then adds amount to each in-bounds cell.
// Out-of-bounds cells are dropped silently: individual noisy hazard reports
// must not abort heatmap maintenance. Negative amounts are ignored so the
// field stays non-negative.
func (h *RiskHeatmap) Reinforce(cells []Cell, amount float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.applyDecayLocked()
	if amount <= 0 {
		return
	}
	for _, c := range cells {
		if c.Row >= 0 && c.Row < h.rows && c.Col >= 0 && c.Col < h.cols {
			h.values[c.Row][c.Col] += amount
		}
	}
}

// Snapshot applies pending decay and returns a copy of the current field.
// The copy is the caller's to keep; it never aliases the live field.
func (h *RiskHeatmap) Snapshot() [][]float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.applyDecayLocked()
	out := make([][]float64, h.rows)
	for r := range h.values {
		out[r] = make([]float64, h.cols)
		copy(out[r], h.values[r])
	}
	return out
}
