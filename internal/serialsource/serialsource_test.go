package serialsource

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/inzora-robotics/groundlink/internal/db"
	"github.com/inzora-robotics/groundlink/internal/monitoring"
	"github.com/inzora-robotics/groundlink/internal/timeutil"
)

func init() {
	monitoring.SetLogger(nil)
}

func TestParseReading(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(42, 0))

	r, err := ParseReading("24.5, 120, 1013.2, 0.02, 87", clock)
	if err != nil {
		t.Fatalf("ParseReading() error = %v", err)
	}
	if *r.Temp != 24.5 || *r.Gas != 120 || *r.Pressure != 1013.2 || *r.Vibration != 0.02 || *r.Battery != 87 {
		t.Errorf("reading = %+v, fields mismatch", r)
	}
	if r.Timestamp != 42 {
		t.Errorf("Timestamp = %v, want 42", r.Timestamp)
	}
}

func TestParseReadingRejectsMalformedLines(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	tests := []string{
		"",
		"1,2,3",
		"1,2,3,4,5,6",
		"a,b,c,d,e",
		"1,2,,4,5",
	}
	for _, line := range tests {
		if _, err := ParseReading(line, clock); err == nil {
			t.Errorf("ParseReading(%q) error = nil, want error", line)
		}
	}
}

func TestMockSourceReplaysFixtures(t *testing.T) {
	src := NewMockSource([]byte("1,2,3,4,5\n\n6,7,8,9,10\r\n"))

	first, err := src.ReadLine()
	if err != nil || first != "1,2,3,4,5" {
		t.Errorf("first ReadLine() = %q, %v", first, err)
	}
	second, err := src.ReadLine()
	if err != nil || second != "6,7,8,9,10" {
		t.Errorf("second ReadLine() = %q, %v", second, err)
	}
	if _, err := src.ReadLine(); err != io.EOF {
		t.Errorf("exhausted ReadLine() error = %v, want EOF", err)
	}
}

func TestMonitorIngestsGoodLinesAndSkipsNoise(t *testing.T) {
	src := NewMockSource([]byte("1,2,3,4,5\ngarbage\n6,7,8,9,10\n"))
	clock := timeutil.NewMockClock(time.Unix(0, 0))

	var got []db.Reading
	err := Monitor(context.Background(), src, clock, func(r db.Reading) {
		got = append(got, r)
	})
	if err != nil {
		t.Fatalf("Monitor() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ingested %d readings, want 2", len(got))
	}
	if *got[0].Temp != 1 || *got[1].Temp != 6 {
		t.Errorf("readings = %+v, want temps 1 and 6", got)
	}
}

func TestMonitorStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewMockSource([]byte("1,2,3,4,5\n"))
	err := Monitor(ctx, src, timeutil.NewMockClock(time.Unix(0, 0)), func(db.Reading) {
		t.Error("ingest called after cancellation")
	})
	if err != context.Canceled {
		t.Errorf("Monitor() error = %v, want context.Canceled", err)
	}
}
