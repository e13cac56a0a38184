// Package serialsource reads telemetry from a robot tethered over a serial
// link, as a fallback for the usual WiFi JSON endpoint. Lines are CSV:
//
//	temp,gas,pressure,vibration,battery
package serialsource

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"

	"github.com/inzora-robotics/groundlink/internal/db"
	"github.com/inzora-robotics/groundlink/internal/monitoring"
	"github.com/inzora-robotics/groundlink/internal/timeutil"
)

// Source yields raw telemetry lines. Implemented for a real serial port and
// as a replayable mock for tests and dev mode.
type Source interface {
	// ReadLine blocks until a full line is available.
	ReadLine() (string, error)
	Close() error
}

// PortSource reads lines from a serial device.
type PortSource struct {
	port   serial.Port
	reader *bufio.Reader
}

// OpenPort opens the serial device at the given baud rate.
func OpenPort(device string, baud int) (*PortSource, error) {
	mode := &serial.Mode{BaudRate: baud}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}
	return &PortSource{port: port, reader: bufio.NewReader(port)}, nil
}

// ReadLine blocks until a newline-terminated telemetry line arrives.
func (s *PortSource) ReadLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close releases the serial port.
func (s *PortSource) Close() error {
	return s.port.Close()
}

// MockSource replays fixture lines, then reports EOF.
type MockSource struct {
	lines []string
	idx   int
}

// NewMockSource creates a MockSource from newline-separated fixture data.
func NewMockSource(data []byte) *MockSource {
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return &MockSource{lines: lines}
}

// ReadLine returns the next fixture line.
func (m *MockSource) ReadLine() (string, error) {
	if m.idx >= len(m.lines) {
		return "", io.EOF
	}
	line := m.lines[m.idx]
	m.idx++
	return line, nil
}

// Close is a no-op.
func (m *MockSource) Close() error { return nil }

// ParseReading decodes one CSV telemetry line.
func ParseReading(line string, clock timeutil.Clock) (db.Reading, error) {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	segments := strings.Split(line, ",")
	if len(segments) != 5 {
		return db.Reading{}, fmt.Errorf("telemetry line has %d fields, want 5: %q", len(segments), line)
	}

	values := make([]float64, len(segments))
	for i, seg := range segments {
		v, err := strconv.ParseFloat(strings.TrimSpace(seg), 64)
		if err != nil {
			return db.Reading{}, fmt.Errorf("parse field %d of %q: %w", i, line, err)
		}
		values[i] = v
	}

	return db.Reading{
		Timestamp: float64(clock.Now().UnixNano()) / float64(time.Second),
		Temp:      &values[0],
		Gas:       &values[1],
		Pressure:  &values[2],
		Vibration: &values[3],
		Battery:   &values[4],
	}, nil
}

// Monitor reads lines until ctx is cancelled or the source is exhausted,
// passing each good reading to ingest. Malformed lines are logged and
// skipped; the tether must survive line noise.
func Monitor(ctx context.Context, src Source, clock timeutil.Clock, ingest func(db.Reading)) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line, err := src.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read telemetry line: %w", err)
		}
		reading, err := ParseReading(line, clock)
		if err != nil {
			monitoring.Logf("skipping telemetry line: %v", err)
			continue
		}
		ingest(reading)
	}
}
