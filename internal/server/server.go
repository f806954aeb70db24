package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gaspardpetit/vizbridge/internal/bridge"
	"github.com/gaspardpetit/vizbridge/internal/config"
	"github.com/gaspardpetit/vizbridge/internal/serverstate"
	"github.com/gaspardpetit/vizbridge/internal/surface"
)

// New constructs the HTTP handler for the server.
func New(cfg config.ServerConfig, frame *bridge.Frame, table *surface.Table) http.Handler {
	r := chi.NewRouter()
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle(cfg.WSPath, SurfaceWSHandler(cfg, table))
	r.Route("/api", func(ar chi.Router) {
		ar.Post("/configuration", handleSendConfiguration(frame))
		ar.Post("/step", handleSendStep(frame))
		ar.Get("/state", StateHandler())
	})
	r.Get("/state", StatusHandler())

	if cfg.MetricsAddr == fmt.Sprintf(":%d", cfg.Port) {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// handleSendConfiguration relays a configuration document to the embedded
// surface as an elfsquad.configurationUpdated envelope.
func handleSendConfiguration(frame *bridge.Frame) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cfg map[string]any
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			http.Error(w, "invalid configuration body", http.StatusBadRequest)
			return
		}
		writeSendResult(w, frame.SendConfigurationUpdated(cfg))
	}
}

// handleSendStep relays a step descriptor as elfsquad.stepChanged.
func handleSendStep(frame *bridge.Frame) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var step any
		if err := json.NewDecoder(r.Body).Decode(&step); err != nil {
			http.Error(w, "invalid step body", http.StatusBadRequest)
			return
		}
		writeSendResult(w, frame.SendStepChanged(step))
	}
}

func writeSendResult(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusAccepted)
	case errors.Is(err, bridge.ErrNoChannel):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

// StateHandler reports bridge state plus host system info as JSON.
func StateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			State  serverstate.State `json:"state"`
			System SystemInfo        `json:"system"`
		}{State: serverstate.Snapshot(), System: sysInfo()})
	}
}
