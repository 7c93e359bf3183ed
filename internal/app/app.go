package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	server "courtworks/server"
	servernet "courtworks/server/internal/net"
	"courtworks/server/internal/telemetry"
	"courtworks/server/logging"
	loggingsinks "courtworks/server/logging/sinks"
)

type Config struct {
	Addr       string
	ConfigPath string
	ClientDir  string
	Logger     telemetry.Logger
}

// Run wires the logging router, the hub, and the HTTP surface together and
// blocks serving until the listener fails or ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}

	addr := cfg.Addr
	if raw := os.Getenv("COURTWORKS_ADDR"); raw != "" {
		addr = raw
	}
	if addr == "" {
		addr = ":8080"
	}

	configPath := cfg.ConfigPath
	if raw := os.Getenv("COURTWORKS_CONFIG"); raw != "" {
		configPath = raw
	}

	facilityCfg, err := server.LoadFacilityConfig(configPath)
	if err != nil {
		return fmt.Errorf("load facility config: %w", err)
	}
	applyEnvOverrides(&facilityCfg, telemetryLogger)

	logConfig := logging.DefaultConfig()
	if raw := os.Getenv("COURTWORKS_LOG_SINKS"); raw != "" {
		logConfig.EnabledSinks = strings.Split(raw, ",")
	}
	if raw := os.Getenv("COURTWORKS_LOG_FILE"); raw != "" {
		logConfig.JSON.FilePath = raw
	}

	var sinks []logging.NamedSink
	if logConfig.HasSink("console") {
		sinks = append(sinks, logging.NamedSink{
			Name: "console",
			Sink: loggingsinks.NewConsoleSink(os.Stdout, logConfig.Console),
		})
	}
	if logConfig.HasSink("json") && logConfig.JSON.FilePath != "" {
		jsonSink, err := loggingsinks.NewJSONSink(logConfig.JSON)
		if err != nil {
			return fmt.Errorf("construct json sink: %w", err)
		}
		sinks = append(sinks, logging.NamedSink{Name: "json", Sink: jsonSink})
	}

	router := logging.NewRouter(logConfig, logging.SystemClock{}, log.Default(), sinks)
	defer func() {
		if cerr := router.Close(context.Background()); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	hub := server.NewHub(facilityCfg, router, telemetryLogger)
	stop := make(chan struct{})
	go hub.RunSimulation(stop)
	defer close(stop)

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{
		ClientDir: cfg.ClientDir,
		Logger:    telemetryLogger,
	})

	srv := &http.Server{Addr: addr, Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	telemetryLogger.Printf("server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// applyEnvOverrides lets deploy scripts tweak the facility without a config
// file. Invalid values log and fall back to the loaded config.
func applyEnvOverrides(cfg *server.FacilityConfig, logger telemetry.Logger) {
	if raw := os.Getenv("COURTWORKS_SEED"); raw != "" {
		cfg.Seed = raw
	}
	if raw := os.Getenv("COURTWORKS_COURTS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.Courts = value
		} else {
			logger.Printf("invalid COURTWORKS_COURTS=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("COURTWORKS_ROBOTS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.Robots = value
		} else {
			logger.Printf("invalid COURTWORKS_ROBOTS=%q: %v", raw, err)
		}
	}
}
