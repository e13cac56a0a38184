// Package api exposes the ground station dashboard over HTTP: live
// telemetry, command relay, link status, the camera feed, and the
// risk-aware path planner.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/inzora-robotics/groundlink/internal/control"
	"github.com/inzora-robotics/groundlink/internal/db"
	"github.com/inzora-robotics/groundlink/internal/httputil"
	"github.com/inzora-robotics/groundlink/internal/nav"
	"github.com/inzora-robotics/groundlink/internal/netstatus"
	"github.com/inzora-robotics/groundlink/internal/sensor"
	"github.com/inzora-robotics/groundlink/internal/version"
)

// ANSI escape codes for request log colouring
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server wires the station's subsystems into HTTP handlers.
type Server struct {
	poller  *sensor.Poller
	relay   *control.Relay
	probe   *netstatus.Probe
	heatmap *nav.RiskHeatmap
	video   http.Handler // optional
	store   *db.DB       // optional, audit trail for hazard reports

	// Planner defaults applied when a request omits them.
	riskWeight      float64
	diagonalPenalty float64
}

// Options collects the Server dependencies.
type Options struct {
	Poller          *sensor.Poller
	Relay           *control.Relay
	Probe           *netstatus.Probe
	Heatmap         *nav.RiskHeatmap
	Video           http.Handler
	Store           *db.DB
	RiskWeight      float64
	DiagonalPenalty float64
}

// NewServer creates a Server.
func NewServer(opts Options) *Server {
	return &Server{
		poller:          opts.Poller,
		relay:           opts.Relay,
		probe:           opts.Probe,
		heatmap:         opts.Heatmap,
		video:           opts.Video,
		store:           opts.Store,
		riskWeight:      opts.RiskWeight,
		diagonalPenalty: opts.DiagonalPenalty,
	}
}

// ServeMux returns the station's route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/sensor_data", s.showSensorData)
	mux.HandleFunc("/sensor_history", s.showSensorHistory)
	mux.HandleFunc("/network", s.showNetwork)
	mux.HandleFunc("/control", s.sendCommand)
	mux.HandleFunc("/api/plan", s.planPath)
	mux.HandleFunc("/api/risk", s.showRisk)
	mux.HandleFunc("/api/risk/reinforce", s.reinforceRisk)
	mux.HandleFunc("/api/risk/heatmap.png", s.renderRiskHeatmap)
	mux.HandleFunc("/api/charts/history", s.renderHistoryChart)
	mux.HandleFunc("/api/eta", s.estimateETA)
	mux.HandleFunc("/healthz", s.health)
	if s.video != nil {
		mux.Handle("/video", s.video)
	}
	return mux
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	default:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	}
}

// LoggingMiddleware logs method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) showSensorData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	status, ok := s.poller.Latest()
	if !ok {
		httputil.WriteJSONOK(w, map[string]interface{}{"error": "no_data", "stale": true})
		return
	}
	httputil.WriteJSONOK(w, status)
}

func (s *Server) showSensorHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	n := 200
	if q := r.URL.Query().Get("n"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "invalid 'n' parameter")
			return
		}
		n = parsed
	}
	httputil.WriteJSONOK(w, s.poller.History(n))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, map[string]string{
		"status":     "ok",
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}

func (s *Server) showNetwork(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, s.probe.Fetch())
}
