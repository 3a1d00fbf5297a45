package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"

	"github.com/prochist/ip21-connector-go/example/demo/config"
	"github.com/prochist/ip21-connector-go/historian"
	"github.com/prochist/ip21-connector-go/historian/ip21engine"
	"github.com/prochist/ip21-connector-go/historian/oteladapters"
)

const (
	defaultPatterns   = "IP_AIDef:*"
	defaultAttributes = "Description,EngUnits"
	defaultWindow     = time.Hour
	defaultInterval   = 30 * time.Second
)

type Config struct {
	DSN                  string
	Patterns             []string
	Attributes           []string
	DefaultGroup         string
	Window               time.Duration
	From                 time.Time
	To                   time.Time
	Frequency            time.Duration
	Interval             time.Duration
	MaxResults           int
	DumpJSON             bool
	ObservabilityEnabled bool
}

func main() {
	cfg := parseFlags()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Initialize database connection to the historian's SQL gateway
	pgxPool, err := pgxpool.NewWithConfig(ctx, config.HistorianPGXPoolConfig(cfg.DSN))
	if err != nil {
		log.Fatalf("Failed to create pgx pool: %v", err)
	}
	defer pgxPool.Close()

	// Test database connection
	if err := pgxPool.Ping(ctx); err != nil {
		log.Fatalf("Failed to connect to historian: %v", err)
	}

	// Initialize observability (if enabled)
	connectorOptions := []ip21engine.Option{
		ip21engine.WithConnectionName("tag-browser"),
	}
	if cfg.DefaultGroup != "" {
		connectorOptions = append(connectorOptions, ip21engine.WithDefaultGroup(cfg.DefaultGroup))
	}
	if cfg.ObservabilityEnabled {
		obsConfig := cfg.NewObservabilityConfig()
		if obsConfig.Logger != nil {
			connectorOptions = append(connectorOptions, ip21engine.WithLogger(obsConfig.Logger))
		}
		if obsConfig.ContextualLogger != nil {
			connectorOptions = append(connectorOptions, ip21engine.WithContextualLogger(obsConfig.ContextualLogger))
		}
		if obsConfig.MetricsCollector != nil {
			connectorOptions = append(connectorOptions, ip21engine.WithMetrics(obsConfig.MetricsCollector))
		}
		if obsConfig.TracingCollector != nil {
			connectorOptions = append(connectorOptions, ip21engine.WithTracing(obsConfig.TracingCollector))
		}
		log.Printf("Observability enabled: metrics=%v, tracing=%v, logging=%v",
			obsConfig.MetricsCollector != nil,
			obsConfig.TracingCollector != nil,
			obsConfig.Logger != nil || obsConfig.ContextualLogger != nil)
	}

	// Initialize the connector
	connector, err := ip21engine.NewConnectorFromPGXPool(pgxPool, cfg.DSN, connectorOptions...)
	if err != nil {
		log.Fatalf("Failed to create connector: %v", err)
	}

	// Initialize the tag browser (connector observability is configured above)
	browser := NewTagBrowser(connector, cfg)

	// Start browsing in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := browser.Start(ctx); err != nil {
			errChan <- fmt.Errorf("tag browser failed: %w", err)
		}
	}()

	log.Printf("Historian Tag Browser started")
	log.Printf("Configuration: patterns=%v, attributes=%v, window=%v, interval=%v",
		cfg.Patterns, cfg.Attributes, cfg.Window, cfg.Interval)
	log.Printf("Press Ctrl+C to stop...")

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
	case err := <-errChan:
		log.Printf("Error occurred: %v", err)
		cancel()
	}

	// Give some time for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := browser.Stop(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Printf("Tag browser stopped")
}

func parseFlags() Config {
	var (
		dsn           = flag.String("dsn", config.HistorianDemoDSN(), "Historian SQL gateway DSN")
		patterns      = flag.String("patterns", defaultPatterns, "Comma-separated tag address patterns")
		attributes    = flag.String("attributes", defaultAttributes, "Comma-separated attributes to list per tag")
		defaultGroup  = flag.String("default-group", "", "Group assumed for addresses without a group part")
		window        = flag.Duration("window", defaultWindow, "Sliding read window ending now")
		from          = flag.String("from", "", "Fixed window start (RFC3339), overrides -window together with -to")
		to            = flag.String("to", "", "Fixed window end (RFC3339), overrides -window together with -from")
		frequency     = flag.Duration("frequency", 0, "Resample frequency for trend reads (0 reads actuals)")
		interval      = flag.Duration("interval", defaultInterval, "Time between browse cycles")
		maxResults    = flag.Int("max-results", 0, "Row cap per query (0 means unlimited)")
		dumpJSON      = flag.Bool("dump-json", false, "Print each result frame as JSON")
		observability = flag.Bool("observability-enabled", false, "Enable OpenTelemetry observability")
	)

	flag.Parse()

	fromTime := parseTimeBound("from", *from)
	toTime := parseTimeBound("to", *to)
	if fromTime.IsZero() != toTime.IsZero() {
		log.Fatalf("Flags -from and -to must be provided together")
	}

	if *window <= 0 {
		log.Fatalf("Invalid window %v: must be positive", *window)
	}
	if *interval <= 0 {
		log.Fatalf("Invalid interval %v: must be positive", *interval)
	}

	return Config{
		DSN:                  *dsn,
		Patterns:             splitCommaList(*patterns),
		Attributes:           splitCommaList(*attributes),
		DefaultGroup:         *defaultGroup,
		Window:               *window,
		From:                 fromTime,
		To:                   toTime,
		Frequency:            *frequency,
		Interval:             *interval,
		MaxResults:           *maxResults,
		DumpJSON:             *dumpJSON,
		ObservabilityEnabled: *observability,
	}
}

func parseTimeBound(name, value string) time.Time {
	if value == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		log.Fatalf("Invalid -%s '%s': %v", name, value, err)
	}

	return parsed
}

func splitCommaList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// ObservabilityConfig holds the observability adapters for the connector.
type ObservabilityConfig struct {
	Logger           historian.Logger
	ContextualLogger historian.ContextualLogger
	MetricsCollector historian.MetricsCollector
	TracingCollector historian.TracingCollector
}

func (c Config) NewObservabilityConfig() ObservabilityConfig {
	if !c.ObservabilityEnabled {
		return ObservabilityConfig{}
	}

	// Create real OpenTelemetry providers for the tag browser
	_, err := config.NewDemoObservabilityConfig()
	if err != nil {
		log.Printf("Failed to create observability providers: %v", err)
		return ObservabilityConfig{}
	}
	// Note: Providers are set globally in OpenTelemetry, no need to store reference

	// Create real OpenTelemetry adapters
	tracer := otel.Tracer("historian-tag-browser")
	meter := otel.Meter("historian-tag-browser")

	metricsCollector := oteladapters.NewMetricsCollector(meter)
	tracingCollector := oteladapters.NewTracingCollector(tracer)
	contextualLogger := oteladapters.NewSlogBridgeLogger("historian-tag-browser")

	return ObservabilityConfig{
		Logger:           nil, // Using contextual logger instead
		ContextualLogger: contextualLogger,
		MetricsCollector: metricsCollector,
		TracingCollector: tracingCollector,
	}
}
