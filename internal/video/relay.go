// Package video relays the robot camera's MJPEG stream to dashboard
// clients, reopening the upstream connection when it stalls.
package video

import (
	"io"
	"net/http"
	"time"

	"github.com/inzora-robotics/groundlink/internal/httputil"
	"github.com/inzora-robotics/groundlink/internal/monitoring"
	"github.com/inzora-robotics/groundlink/internal/timeutil"
)

// reopenDelay is the pause before reconnecting to a stalled camera.
const reopenDelay = 80 * time.Millisecond

// maxReopens bounds reconnect attempts within one client request so a dead
// camera does not pin the handler forever.
const maxReopens = 25

// Relay proxies the camera stream. It implements http.Handler.
type Relay struct {
	url    string
	client httputil.HTTPClient
	clock  timeutil.Clock
}

// NewRelay creates a Relay for the camera at url. Nil client and clock fall
// back to the standard client and the real clock.
func NewRelay(url string, client httputil.HTTPClient, clock timeutil.Clock) *Relay {
	if client == nil {
		client = httputil.NewStandardClient(nil)
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Relay{url: url, client: client, clock: clock}
}

// ServeHTTP streams the camera feed to the client until the client goes
// away or the camera stays down past the reconnect limit.
func (v *Relay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	headerSent := false

	for attempt := 0; attempt <= maxReopens; attempt++ {
		if r.Context().Err() != nil {
			return
		}
		if attempt > 0 {
			v.clock.Sleep(reopenDelay)
		}

		resp, err := v.client.Get(v.url)
		if err != nil {
			monitoring.Logf("camera fetch failed: %v", err)
			continue
		}
		if resp.StatusCode != 200 {
			resp.Body.Close()
			monitoring.Logf("camera responded %d", resp.StatusCode)
			continue
		}

		if !headerSent {
			ct := resp.Header.Get("Content-Type")
			if ct == "" {
				ct = "multipart/x-mixed-replace"
			}
			w.Header().Set("Content-Type", ct)
			w.WriteHeader(http.StatusOK)
			headerSent = true
		}

		_, copyErr := io.Copy(&flushWriter{w: w}, resp.Body)
		resp.Body.Close()
		if copyErr != nil && r.Context().Err() != nil {
			// Client hung up; nothing to recover.
			return
		}
		// Upstream ended or broke: fall through and reopen.
	}

	if !headerSent {
		http.Error(w, "camera unavailable", http.StatusBadGateway)
	}
}

// flushWriter pushes each copied chunk out immediately so frames are not
// buffered into a burst.
type flushWriter struct {
	w http.ResponseWriter
}

func (f *flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if flusher, ok := f.w.(http.Flusher); ok {
		flusher.Flush()
	}
	return n, err
}
