package ip21engine

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/prochist/ip21-connector-go/historian"
)

const (
	spanNamePrefix = "historian."

	spanAttrOperation   = "operation"
	spanAttrDialect     = "dialect"
	spanAttrErrorType   = "error_type"
	spanAttrResultCount = "result_count"
	spanAttrDurationMS  = "duration_ms"

	statusSuccess = "success"
	statusError   = "error"

	labelStatus = "status"

	metricOperationDuration = "historian_operation_duration_seconds"
	metricOperationResults  = "historian_operation_result_count"
	metricHistorianErrors   = "historian_errors_total"

	errorTypePrecondition = "precondition"
	errorTypeAddress      = "address_resolution"
	errorTypeBuildQuery   = "build_query"
	errorTypeQuery        = "database_query"
	errorTypeScan         = "row_scan"
	errorTypeNormalize    = "normalize_rows"
)

// logQueryWithDuration logs SQL queries with execution time at debug level if a logger is configured.
func (c *Connector) logQueryWithDuration(
	ctx context.Context,
	sqlQuery sqlQueryString,
	action string,
	duration queryDuration,
) {
	if c.logger != nil {
		c.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}

	if c.contextualLogger != nil {
		c.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (c *Connector) logOperation(ctx context.Context, action string, args ...any) {
	if c.logger != nil {
		c.logger.Info(logMsgOperation+action, args...)
	}

	if c.contextualLogger != nil {
		c.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logError logs error information at the error level if a logger is configured.
func (c *Connector) logError(
	ctx context.Context,
	message string,
	err error,
	args ...any,
) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if c.logger != nil {
		c.logger.Error(message, allArgs...)
	}

	if c.contextualLogger != nil {
		c.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// formatDurationMS formats a duration for span attributes.
func formatDurationMS(d time.Duration) string {
	return strconv.FormatFloat(toMilliseconds(d), 'f', -1, 64)
}

// recordDurationMetricsContext records duration metrics with context if the collector supports it.
func (c *Connector) recordDurationMetricsContext(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	operation, status string,
) {
	if c.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       status,
	}

	// Use the context-aware method if available
	if contextualCollector, ok := c.metricsCollector.(historian.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
	} else {
		c.metricsCollector.RecordDuration(metricName, duration, labels)
	}
}

// recordValueMetricsContext records value metrics with context if the collector supports it.
func (c *Connector) recordValueMetricsContext(
	ctx context.Context,
	metricName string,
	value float64,
	operation, status string,
) {
	if c.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       status,
	}

	// Use the context-aware method if available
	if contextualCollector, ok := c.metricsCollector.(historian.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metricName, value, labels)
	} else {
		c.metricsCollector.RecordValue(metricName, value, labels)
	}
}

// recordErrorMetricsContext records error metrics with context if the collector supports it.
func (c *Connector) recordErrorMetricsContext(ctx context.Context, operation, errorType string) {
	if c.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       statusError,
		spanAttrErrorType: errorType,
	}

	// Use the context-aware method if available
	if contextualCollector, ok := c.metricsCollector.(historian.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricHistorianErrors, labels)
	} else {
		c.metricsCollector.IncrementCounter(metricHistorianErrors, labels)
	}
}

// startTraceSpan starts a tracing span if the tracing collector is configured.
func (c *Connector) startTraceSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, historian.SpanContext) {
	if c.tracingCollector != nil {
		return c.tracingCollector.StartSpan(ctx, name, attrs)
	}

	return ctx, nil
}

// finishTraceSpan finishes a tracing span if the tracing collector is configured.
func (c *Connector) finishTraceSpan(
	spanCtx historian.SpanContext,
	status string,
	attrs map[string]string,
) {
	if c.tracingCollector != nil && spanCtx != nil {
		c.tracingCollector.FinishSpan(spanCtx, status, attrs)
	}
}

// operationObserver bundles the span, metrics and timing of one facade
// operation so the operation bodies stay free of observability plumbing.
// Every operation finishes its observer exactly once, with succeed or fail.
type operationObserver struct {
	connector *Connector
	ctx       context.Context
	operation string
	span      historian.SpanContext
	startedAt time.Time
}

// startOperationObserver opens the span for a facade operation and starts the
// clock. The returned context carries the span for downstream correlation.
func (c *Connector) startOperationObserver(ctx context.Context, operation string) (*operationObserver, context.Context) {
	spanAttrs := map[string]string{
		spanAttrOperation: operation,
		spanAttrDialect:   c.Dialect().String(),
	}

	newCtx, span := c.startTraceSpan(ctx, spanNamePrefix+operation, spanAttrs)

	return &operationObserver{
		connector: c,
		ctx:       newCtx,
		operation: operation,
		span:      span,
		startedAt: time.Now(),
	}, newCtx
}

// succeed finishes the span and records duration and result size metrics.
func (o *operationObserver) succeed(resultCount int) {
	duration := time.Since(o.startedAt)

	if o.span != nil {
		o.span.SetStatus(statusSuccess)
		o.span.AddAttribute(spanAttrResultCount, strconv.Itoa(resultCount))
		o.span.AddAttribute(spanAttrDurationMS, formatDurationMS(duration))
	}

	o.connector.finishTraceSpan(o.span, statusSuccess, map[string]string{
		spanAttrResultCount: strconv.Itoa(resultCount),
	})

	o.connector.recordDurationMetricsContext(o.ctx, metricOperationDuration, duration, o.operation, statusSuccess)
	o.connector.recordValueMetricsContext(o.ctx, metricOperationResults, float64(resultCount), o.operation, statusSuccess)
}

// fail finishes the span and records duration and error metrics.
func (o *operationObserver) fail(errorType string) {
	duration := time.Since(o.startedAt)

	if o.span != nil {
		o.span.SetStatus(statusError)
		o.span.AddAttribute(spanAttrErrorType, errorType)
		o.span.AddAttribute(spanAttrDurationMS, formatDurationMS(duration))
	}

	o.connector.finishTraceSpan(o.span, statusError, map[string]string{
		spanAttrErrorType: errorType,
	})

	o.connector.recordDurationMetricsContext(o.ctx, metricOperationDuration, duration, o.operation, statusError)
	o.connector.recordErrorMetricsContext(o.ctx, o.operation, errorType)
}
