// Package sensor polls the robot's telemetry endpoint and keeps the latest
// reading plus a bounded in-memory history, persisting good readings.
package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/inzora-robotics/groundlink/internal/db"
	"github.com/inzora-robotics/groundlink/internal/httputil"
	"github.com/inzora-robotics/groundlink/internal/monitoring"
	"github.com/inzora-robotics/groundlink/internal/timeutil"
)

// maxBackoff caps the poll retry interval when the robot is unreachable.
const maxBackoff = 5 * time.Second

// backoffFactor grows the retry interval after each consecutive failure.
const backoffFactor = 1.6

// Status is the latest reading plus freshness metadata for the dashboard.
type Status struct {
	db.Reading
	Stale    bool    `json:"stale"`
	LastOKTS float64 `json:"last_ok_ts"`
}

// wireReading is the JSON schema the robot firmware reports. Survivors may
// arrive under either of two keys depending on firmware version.
type wireReading struct {
	Temp      *float64 `json:"temp"`
	Gas       *float64 `json:"gas"`
	Pressure  *float64 `json:"pressure"`
	Vibration *float64 `json:"vibration"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Battery   *float64 `json:"battery"`
	Mode      *string  `json:"mode"`
	RSSI      *float64 `json:"rssi"`
	Quality   *float64 `json:"quality"`
	Survivors *int64   `json:"survivors"`
	People    *int64   `json:"people"`
}

// Poller fetches telemetry on a fixed cadence with exponential backoff on
// failure. All accessors are safe for concurrent use.
type Poller struct {
	url          string
	client       httputil.HTTPClient
	clock        timeutil.Clock
	interval     time.Duration
	staleAfter   time.Duration
	historyLimit int
	store        *db.DB // optional

	mu      sync.Mutex
	latest  *db.Reading
	history []db.Reading
	lastOK  time.Time
}

// Options configures a Poller. Store may be nil to skip persistence.
type Options struct {
	URL          string
	Client       httputil.HTTPClient
	Clock        timeutil.Clock
	Interval     time.Duration
	StaleAfter   time.Duration
	HistoryLimit int
	Store        *db.DB
}

// New creates a Poller. Nil Client and Clock fall back to the standard
// client and the real clock.
func New(opts Options) *Poller {
	if opts.Client == nil {
		opts.Client = httputil.NewStandardClient(nil)
	}
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 3 * time.Second
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 5000
	}
	return &Poller{
		url:          opts.URL,
		client:       opts.Client,
		clock:        opts.Clock,
		interval:     opts.Interval,
		staleAfter:   opts.StaleAfter,
		historyLimit: opts.HistoryLimit,
		store:        opts.Store,
	}
}

// Run polls until ctx is cancelled. A failed poll keeps the previous
// reading (the dashboard sees the stale flag) and backs off before retrying.
func (p *Poller) Run(ctx context.Context) {
	backoff := p.interval
	for {
		if err := p.PollOnce(); err != nil {
			monitoring.Logf("sensor poll failed: %v", err)
			backoff = time.Duration(float64(backoff) * backoffFactor)
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		} else {
			backoff = p.interval
		}

		timer := p.clock.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C():
		}
	}
}

// PollOnce fetches and ingests a single reading.
func (p *Poller) PollOnce() error {
	resp, err := p.client.Get(p.url)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", p.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("fetch %s: unexpected status %d", p.url, resp.StatusCode)
	}

	var wire wireReading
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return fmt.Errorf("decode reading: %w", err)
	}

	reading := db.Reading{
		Timestamp: float64(p.clock.Now().UnixNano()) / float64(time.Second),
		Temp:      wire.Temp,
		Gas:       wire.Gas,
		Pressure:  wire.Pressure,
		Vibration: wire.Vibration,
		Latitude:  wire.Latitude,
		Longitude: wire.Longitude,
		Battery:   wire.Battery,
		Mode:      wire.Mode,
		RSSI:      wire.RSSI,
		Quality:   wire.Quality,
		Survivors: wire.Survivors,
	}
	if reading.Survivors == nil {
		reading.Survivors = wire.People
	}

	p.Ingest(reading)
	return nil
}

// Ingest records a reading from any source (the poll loop, or a tethered
// serial feed) as the latest value and appends it to the history.
func (p *Poller) Ingest(r db.Reading) {
	p.mu.Lock()
	p.latest = &r
	p.history = append(p.history, r)
	if len(p.history) > p.historyLimit {
		p.history = p.history[len(p.history)-p.historyLimit:]
	}
	p.lastOK = p.clock.Now()
	p.mu.Unlock()

	if p.store != nil {
		if err := p.store.RecordReading(r); err != nil {
			monitoring.Logf("failed to persist reading: %v", err)
		}
	}
}

// Latest returns the most recent reading with its freshness flag, or ok
// false when nothing has been ingested yet.
func (p *Poller) Latest() (Status, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.latest == nil {
		return Status{Stale: true}, false
	}
	return Status{
		Reading:  *p.latest,
		Stale:    p.clock.Since(p.lastOK) > p.staleAfter,
		LastOKTS: float64(p.lastOK.UnixNano()) / float64(time.Second),
	}, true
}

// History returns up to limit readings, oldest first.
func (p *Poller) History(limit int) []db.Reading {
	p.mu.Lock()
	defer p.mu.Unlock()

	if limit < 1 {
		limit = 1
	}
	if limit > len(p.history) {
		limit = len(p.history)
	}
	out := make([]db.Reading, limit)
	copy(out, p.history[len(p.history)-limit:])
	return out
}
