package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gaspardpetit/vizbridge/internal/bridge"
	"github.com/gaspardpetit/vizbridge/internal/config"
	"github.com/gaspardpetit/vizbridge/internal/logx"
	"github.com/gaspardpetit/vizbridge/internal/metrics"
	"github.com/gaspardpetit/vizbridge/internal/server"
	"github.com/gaspardpetit/vizbridge/internal/serverstate"
	"github.com/gaspardpetit/vizbridge/internal/surface"
)

var (
	version   = "dev"
	buildSHA  = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	var cfg config.ServerConfig
	// Resolve config with precedence: defaults < file < env < flags.
	cfg.SetDefaults()
	cfg.ApplyEnv() // picks up CONFIG_FILE
	// Allow --config to override the file path before loading it.
	for i := 1; i < len(os.Args); i++ {
		a := os.Args[i]
		if a == "--config" && i+1 < len(os.Args) {
			cfg.ConfigFile = os.Args[i+1]
			break
		}
		if strings.HasPrefix(a, "--config=") {
			cfg.ConfigFile = strings.TrimPrefix(a, "--config=")
			break
		}
	}
	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			logx.Log.Fatal().Err(err).Str("path", cfg.ConfigFile).Msg("load config")
		}
	}
	cfg.ApplyEnv()
	cfg.BindFlags()
	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "vizbridge version=%s sha=%s date=%s\n\n", version, buildSHA, buildDate)
		flag.PrintDefaults()
	}
	flag.Parse()
	if *showVersion {
		fmt.Printf("vizbridge version=%s sha=%s date=%s\n", version, buildSHA, buildDate)
		return
	}

	logx.Configure(cfg.LogLevel)

	metrics.Register(prometheus.DefaultRegisterer)
	metrics.SetServerBuildInfo(version, buildSHA, buildDate)

	if cfg.RedisAddr != "" {
		rs, err := serverstate.NewRedisStore(cfg.RedisAddr)
		if err != nil {
			logx.Log.Fatal().Err(err).Msg("connect redis")
		}
		serverstate.UseStore(rs)
		logx.Log.Info().Str("addr", cfg.RedisAddr).Msg("using redis state store")
	}

	mounts := surface.NewRegistry()
	mounts.Add(cfg.Container, &surface.Node{ID: cfg.Container, Kind: surface.NodeElement})
	frame, err := bridge.New(
		bridge.Options{Container: cfg.Container, URL: cfg.SurfaceURL},
		bridge.Host{Mounts: mounts},
	)
	if err != nil {
		logx.Log.Fatal().Err(err).Msg("construct bridge frame")
	}
	defer frame.Close()
	table := surface.NewTable()
	table.Add(frame.Surface())

	logEvent := func(name string) bridge.Callback {
		return func(args json.RawMessage) {
			serverstate.SetLastEvent(name)
			logx.Log.Info().Str("event", name).Int("args_bytes", len(args)).Msg("surface event")
		}
	}
	frame.OnTriggerConfigurationUpdate(logEvent("triggerConfigurationUpdate"))
	frame.OnUpdateRequirement(logEvent("updateRequirement"))
	frame.OnUpdateRequirements(logEvent("updateRequirements"))
	frame.OnUpdateImageValue(logEvent("updateImageValue"))
	frame.OnUpdateTextValue(logEvent("updateTextValue"))
	frame.OnUpdateLinkedConfigurationCardinality(logEvent("updateLinkedConfigurationCardinality"))
	frame.OnRemoveLinkedConfiguration(logEvent("removeLinkedConfiguration"))
	frame.OnDragStarted(logEvent("dragStarted"))

	handler := server.New(cfg, frame, table)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: handler}
	var metricsSrv *http.Server
	if cfg.MetricsAddr != fmt.Sprintf(":%d", cfg.Port) {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logx.Log.Warn().Msg("termination requested")
		cancel()
	}()
	go func() {
		<-ctx.Done()
		serverstate.SetStatus("stopping")
		if err := srv.Shutdown(context.Background()); err != nil {
			logx.Log.Error().Err(err).Msg("server shutdown")
		}
	}()
	if metricsSrv != nil {
		go func() {
			<-ctx.Done()
			if err := metricsSrv.Shutdown(context.Background()); err != nil {
				logx.Log.Error().Err(err).Msg("metrics server shutdown")
			}
		}()
		go func() {
			logx.Log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server starting")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logx.Log.Error().Err(err).Msg("metrics server error")
			}
		}()
	}

	if cfg.SurfaceKey != "" {
		logx.Log.Info().Msg("surface key required")
	}
	serverstate.SetStatus("ready")
	logx.Log.Info().Int("port", cfg.Port).Str("ws_path", cfg.WSPath).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logx.Log.Fatal().Err(err).Msg("server error")
	}
}
