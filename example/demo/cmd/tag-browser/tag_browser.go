// Package main implements a tag browser for exploring an Aspen InfoPlus.21
// historian through the connector: it lists tags for configurable address
// patterns and polls their trend values over a time window.
package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/prochist/ip21-connector-go/historian"
	"github.com/prochist/ip21-connector-go/historian/ip21engine"
)

// maxPrintedTags caps the per-cycle tag listing output.
const maxPrintedTags = 20

// TagBrowser polls one historian session: each cycle lists the configured
// address patterns and reads the trend window for every listed tag.
type TagBrowser struct {
	connector *ip21engine.Connector
	config    Config

	// Cycle scheduling
	ticker   *time.Ticker
	stopChan chan struct{}
	wg       sync.WaitGroup

	// Metrics and state
	cycleCount int64
	errorCount int64
	startTime  time.Time
	mu         sync.RWMutex
}

// NewTagBrowser creates a new TagBrowser instance with the provided connector and configuration.
func NewTagBrowser(connector *ip21engine.Connector, config Config) *TagBrowser {
	return &TagBrowser{
		connector: connector,
		config:    config,
		stopChan:  make(chan struct{}),
	}
}

// Start establishes the historian session and begins browse cycles at the
// configured interval. It runs until the context is cancelled or Stop() is called.
func (tb *TagBrowser) Start(ctx context.Context) error {
	tb.mu.Lock()
	tb.startTime = time.Now()
	tb.cycleCount = 0
	tb.errorCount = 0
	tb.mu.Unlock()

	if err := tb.connector.Connect(ctx); err != nil {
		return fmt.Errorf("failed to establish historian session: %w", err)
	}

	defer func() {
		if err := tb.connector.Disconnect(context.Background()); err != nil {
			log.Printf("Error closing historian session: %v", err)
		}
	}()

	if info, err := tb.connector.ConnectionInfo(); err == nil {
		log.Printf("Connected: %s (session %s)", info.OneLiner, info.SessionID)
	}

	tb.ticker = time.NewTicker(tb.config.Interval)
	defer tb.ticker.Stop()

	log.Printf("Tag browser starting: %d patterns, cycle interval %v", len(tb.config.Patterns), tb.config.Interval)

	// Start stats reporting goroutine
	tb.wg.Add(1)
	go tb.statsReporter(ctx)

	// The connector owns its session exclusively, so cycles run inline
	// in this loop instead of in per-cycle goroutines.
	tb.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Tag browser stopping due to context cancellation")
			return ctx.Err()

		case <-tb.stopChan:
			log.Printf("Tag browser stopping due to stop signal")
			return nil

		case <-tb.ticker.C:
			tb.runCycle(ctx)
		}
	}
}

// Stop gracefully shuts down the tag browser.
func (tb *TagBrowser) Stop(ctx context.Context) error {
	close(tb.stopChan)

	// Wait for the stats goroutine to finish with timeout
	done := make(chan struct{})
	go func() {
		tb.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		tb.logFinalStats()
		return nil
	case <-ctx.Done():
		tb.logFinalStats()
		return fmt.Errorf("shutdown timeout exceeded")
	}
}

// runCycle executes a single browse cycle and updates the counters.
func (tb *TagBrowser) runCycle(ctx context.Context) {
	opCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := tb.browseOnce(opCtx)

	tb.mu.Lock()
	tb.cycleCount++
	if err != nil {
		tb.errorCount++
		log.Printf("Browse cycle error: %v", err)
	}
	tb.mu.Unlock()
}

// browseOnce lists the configured patterns and reads the trend window for
// every listed tag.
func (tb *TagBrowser) browseOnce(ctx context.Context) error {
	tagSet, err := tb.connector.ListTags(ctx, tb.config.Patterns, ip21engine.ListOptions{
		Attributes: tb.config.Attributes,
		MaxResults: tb.config.MaxResults,
	})
	if err != nil {
		return fmt.Errorf("tag listing failed: %w", err)
	}

	addresses := make([]string, 0, len(tagSet))
	for address := range tagSet {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)

	log.Printf("Listed %d tags for %d patterns", len(addresses), len(tb.config.Patterns))
	for i, address := range addresses {
		if i == maxPrintedTags {
			log.Printf("  ... and %d more", len(addresses)-maxPrintedTags)
			break
		}
		log.Printf("  %s%s", address, describeTag(tagSet[address], tb.config.Attributes))
	}

	if len(addresses) == 0 {
		return nil
	}

	first, last := tb.window()

	frame, err := tb.connector.ReadTagValuesPeriod(ctx, addresses, ip21engine.ReadOptions{
		FirstTimestamp: first,
		LastTimestamp:  last,
		Frequency:      tb.config.Frequency,
		MaxResults:     tb.config.MaxResults,
		Progress: func(group string) {
			log.Printf("  reading group %s", group)
		},
	})
	if err != nil {
		return fmt.Errorf("period read failed: %w", err)
	}

	log.Printf("Read %d rows x %d columns between %s and %s",
		frame.NumRows(), len(frame.Columns()),
		first.Format(time.RFC3339), last.Format(time.RFC3339))

	if tb.config.DumpJSON && !frame.IsEmpty() {
		payload, marshalErr := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(frame)
		if marshalErr != nil {
			return fmt.Errorf("frame serialization failed: %w", marshalErr)
		}
		fmt.Println(string(payload))
	}

	return nil
}

// window returns the read window for the current cycle: the fixed from/to
// bounds when configured, otherwise a sliding window ending now.
func (tb *TagBrowser) window() (time.Time, time.Time) {
	if !tb.config.From.IsZero() || !tb.config.To.IsZero() {
		return tb.config.From, tb.config.To
	}

	now := time.Now()

	return now.Add(-tb.config.Window), now
}

// describeTag renders the requested attribute values of one listed tag.
func describeTag(row historian.Row, attributes []string) string {
	description := ""
	for _, attribute := range attributes {
		value, ok := row[attribute]
		if !ok || value == nil || value == "" {
			continue
		}
		description += fmt.Sprintf("  %s=%v", attribute, value)
	}

	return description
}

// statsReporter logs cycle statistics periodically.
func (tb *TagBrowser) statsReporter(ctx context.Context) {
	defer tb.wg.Done()

	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tb.stopChan:
			return
		case <-ticker.C:
			tb.logCurrentStats()
		}
	}
}

// logCurrentStats logs current browse statistics.
func (tb *TagBrowser) logCurrentStats() {
	tb.mu.RLock()
	duration := time.Since(tb.startTime)
	cycles := tb.cycleCount
	errors := tb.errorCount
	tb.mu.RUnlock()

	log.Printf("Stats: %d cycles in %v, %d errors", cycles, duration.Truncate(time.Second), errors)
}

// logFinalStats logs final browse statistics.
func (tb *TagBrowser) logFinalStats() {
	tb.mu.RLock()
	duration := time.Since(tb.startTime)
	cycles := tb.cycleCount
	errors := tb.errorCount
	tb.mu.RUnlock()

	log.Printf("Final Stats: %d cycles in %v, %d errors", cycles, duration.Truncate(time.Second), errors)
}
