package main

import (
	"context"
	"embed"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/inzora-robotics/groundlink/internal/api"
	"github.com/inzora-robotics/groundlink/internal/config"
	"github.com/inzora-robotics/groundlink/internal/db"
	"github.com/inzora-robotics/groundlink/internal/nav"
	"github.com/inzora-robotics/groundlink/internal/sensor"
	"github.com/inzora-robotics/groundlink/internal/serialsource"
	"github.com/inzora-robotics/groundlink/internal/timeutil"
	"github.com/inzora-robotics/groundlink/internal/version"
	"github.com/inzora-robotics/groundlink/internal/video"

	"github.com/inzora-robotics/groundlink/internal/control"
	"github.com/inzora-robotics/groundlink/internal/netstatus"
)

var (
	//go:embed static/*
	staticFiles embed.FS
	devMode     = flag.Bool("dev", false, "Run in dev mode (fixture serial input, local static files)")
	listen      = flag.String("listen", ":8080", "Listen address")
	configPath  = flag.String("config", "groundlink.json", "Station config file")
	dbFile      = flag.String("db", "groundlink.db", "SQLite database file")
	serialDev   = flag.String("serial", "", "Serial device for wired telemetry (empty to disable)")
	serialBaud  = flag.Int("baud", 115200, "Serial baud rate")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := &config.Config{}
	if _, statErr := os.Stat(*configPath); statErr == nil {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config %s: %v", *configPath, err)
		}
	} else {
		log.Printf("config %s not found, using defaults", *configPath)
	}

	store, err := db.Open(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer store.Close()

	clock := timeutil.RealClock{}

	heatmap, err := nav.NewRiskHeatmap(cfg.GetRiskRows(), cfg.GetRiskCols(), cfg.GetRiskDecayPerSec(), clock)
	if err != nil {
		log.Fatalf("failed to create risk heatmap: %v", err)
	}

	poller := sensor.New(sensor.Options{
		URL:          cfg.GetSensorURL(),
		Clock:        clock,
		Interval:     cfg.GetPollInterval(),
		StaleAfter:   cfg.GetStaleAfter(),
		HistoryLimit: cfg.GetHistoryLimit(),
		Store:        store,
	})

	// Wired telemetry is optional; when present it feeds the same
	// poller state as the HTTP poll loop.
	var serialSrc serialsource.Source
	if *devMode {
		data, err := os.ReadFile("fixtures.txt")
		if err != nil {
			log.Fatalf("failed to open fixtures file: %v", err)
		}
		serialSrc = serialsource.NewMockSource(data)
	} else if *serialDev != "" {
		serialSrc, err = serialsource.OpenPort(*serialDev, *serialBaud)
		if err != nil {
			log.Fatalf("failed to open serial device %s: %v", *serialDev, err)
		}
	}
	if serialSrc != nil {
		defer serialSrc.Close()
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Run(ctx)
		log.Print("sensor poll routine terminated")
	}()

	if serialSrc != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := serialsource.Monitor(ctx, serialSrc, clock, poller.Ingest); err != nil && err != context.Canceled {
				log.Printf("failed to monitor serial source: %v", err)
			}
			log.Print("serial monitor routine terminated")
		}()
	}

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// admin debugging routes (accessible only in dev mode or over Tailscale)
		store.AttachAdminRoutes(mux)

		srv := api.NewServer(api.Options{
			Poller:          poller,
			Relay:           control.NewRelay(cfg.GetControllerURL(), nil, store),
			Probe:           netstatus.NewProbe(cfg.GetNetworkURL(), nil, clock),
			Heatmap:         heatmap,
			Video:           video.NewRelay(cfg.GetCameraURL(), nil, clock),
			Store:           store,
			RiskWeight:      cfg.GetRiskWeight(),
			DiagonalPenalty: cfg.GetDiagonalPenalty(),
		})
		apiMux := srv.ServeMux()

		// read static files from the embedded filesystem in production or
		// from the local ./static in dev for easier iteration
		var staticHandler http.Handler
		if *devMode {
			staticHandler = http.FileServer(http.Dir("./static"))
		} else {
			staticRoot, err := fs.Sub(staticFiles, "static")
			if err != nil {
				log.Fatalf("embedded static files missing: %v", err)
			}
			staticHandler = http.FileServer(http.FS(staticRoot))
		}
		apiMux.Handle("/", staticHandler)
		mux.Handle("/", apiMux)

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}()

	log.Printf("groundlink %s (%s) listening on %s", version.Version, version.GitSHA, *listen)
	wg.Wait()
}
