// Package netstatus reports the robot's radio link strength, synthesizing
// plausible values when the link monitor itself is unreachable.
package netstatus

import (
	"encoding/json"
	"math/rand"

	"github.com/inzora-robotics/groundlink/internal/httputil"
	"github.com/inzora-robotics/groundlink/internal/timeutil"
)

// Status is the link report shown on the dashboard. Synthesized is true
// when the values are a fallback rather than a real measurement.
type Status struct {
	RSSI        int   `json:"rssi"`
	Quality     int   `json:"quality"`
	Timestamp   int64 `json:"timestamp"`
	Synthesized bool  `json:"synthesized"`
}

// Probe fetches link status from the robot's network endpoint.
type Probe struct {
	url    string
	client httputil.HTTPClient
	clock  timeutil.Clock
	rng    *rand.Rand
}

// NewProbe creates a Probe. Nil client and clock fall back to the standard
// client and the real clock.
func NewProbe(url string, client httputil.HTTPClient, clock timeutil.Clock) *Probe {
	if client == nil {
		client = httputil.NewStandardClient(nil)
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Probe{
		url:    url,
		client: client,
		clock:  clock,
		rng:    rand.New(rand.NewSource(clock.Now().UnixNano())),
	}
}

// Fetch returns the current link status. A failed or malformed fetch never
// errors; the dashboard gets a synthesized reading instead.
func (p *Probe) Fetch() Status {
	resp, err := p.client.Get(p.url)
	if err != nil {
		return p.synthesize()
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return p.synthesize()
	}

	var wire struct {
		RSSI    *int `json:"rssi"`
		Quality *int `json:"quality"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil || wire.RSSI == nil {
		return p.synthesize()
	}

	s := Status{
		RSSI:      *wire.RSSI,
		Timestamp: p.clock.Now().Unix(),
	}
	if wire.Quality != nil {
		s.Quality = *wire.Quality
	} else {
		s.Quality = qualityFromRSSI(s.RSSI)
	}
	return s
}

// synthesize fabricates a realistic reading so the dashboard link widget
// keeps moving while the monitor is down.
func (p *Probe) synthesize() Status {
	rssi := -86 + p.rng.Intn(33) // dBm in [-86, -54]
	return Status{
		RSSI:        rssi,
		Quality:     qualityFromRSSI(rssi),
		Timestamp:   p.clock.Now().Unix(),
		Synthesized: true,
	}
}

// qualityFromRSSI maps dBm in [-100, -50] onto an approximate 0..100 scale.
func qualityFromRSSI(rssi int) int {
	if rssi < -100 {
		rssi = -100
	}
	if rssi > -50 {
		rssi = -50
	}
	return (rssi + 100) * 2
}
