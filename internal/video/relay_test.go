package video

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/inzora-robotics/groundlink/internal/httputil"
	"github.com/inzora-robotics/groundlink/internal/monitoring"
	"github.com/inzora-robotics/groundlink/internal/timeutil"
)

func init() {
	monitoring.SetLogger(nil)
}

func TestRelayStreamsUpstreamBody(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	client.AddResponse(200, "frame-bytes")
	relay := NewRelay("http://cam.local/stream", client, timeutil.NewMockClock(time.Unix(0, 0)))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/video", nil)
	relay.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got[:11] != "frame-bytes" {
		t.Errorf("body = %q, want upstream bytes first", got[:11])
	}
	if ct := rec.Header().Get("Content-Type"); ct != "multipart/x-mixed-replace" {
		t.Errorf("content type = %q, want multipart/x-mixed-replace default", ct)
	}
}

func TestRelayReopensAfterUpstreamEnds(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	client.AddResponse(200, "first")
	client.AddErrorResponse(errors.New("camera reset"))
	client.AddResponse(200, "second")
	relay := NewRelay("http://cam.local/stream", client, timeutil.NewMockClock(time.Unix(0, 0)))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/video", nil)
	relay.ServeHTTP(rec, req)

	body := rec.Body.String()
	if len(body) < 11 || body[:5] != "first" {
		t.Fatalf("body = %q, want both segments relayed", body)
	}
	if client.RequestCount() < 3 {
		t.Errorf("RequestCount() = %d, want reconnects after resets", client.RequestCount())
	}
}

func TestRelayBadGatewayWhenCameraNeverAnswers(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	for i := 0; i <= maxReopens; i++ {
		client.AddErrorResponse(errors.New("down"))
	}
	relay := NewRelay("http://cam.local/stream", client, timeutil.NewMockClock(time.Unix(0, 0)))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/video", nil)
	relay.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502 when the camera never answers", rec.Code)
	}
}
