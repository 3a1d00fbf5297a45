package ip21engine

import (
	"github.com/prochist/ip21-connector-go/historian"
)

// Option defines a functional option for configuring a Connector.
type Option func(*Connector) error

// WithConnectionName sets the name of this connector instance, used in
// logs and host registries to tell connections apart.
func WithConnectionName(name string) Option {
	return func(c *Connector) error {
		if name == "" {
			return historian.ErrEmptyConnectionName
		}

		c.connectionName = name

		return nil
	}
}

// WithGroupTagDelimiter sets the character that separates the group and the
// tag name in tag addresses. The delimiter is validated at construction: it
// must be a single character that cannot occur in tag names or patterns.
func WithGroupTagDelimiter(delimiter string) Option {
	return func(c *Connector) error {
		c.delimiter = delimiter
		return nil
	}
}

// WithDefaultGroup sets the group used for tag addresses without a group
// part. Without a default group, addresses must always carry one.
func WithDefaultGroup(group string) Option {
	return func(c *Connector) error {
		c.defaultGroup = group
		return nil
	}
}

// WithAttributeMap replaces the default InfoPlus.21 attribute dictionary,
// for backends whose record tables use renamed columns.
func WithAttributeMap(attributes historian.AttributeMap) Option {
	return func(c *Connector) error {
		if attributes.Len() == 0 {
			return historian.ErrEmptyAttributeMap
		}

		c.attributes = attributes

		return nil
	}
}

// WithDialect overrides the dialect detected from the connection descriptor.
// The dialect stays fixed for the connector's lifetime; use this for
// backends whose descriptor does not carry the detection marker, such as
// historian mirrors reached through PostgreSQL drivers.
func WithDialect(dialect Dialect) Option {
	return func(c *Connector) error {
		c.dialectAdapter = adapterForDialect(dialect)
		return nil
	}
}

// WithLogger sets the logger for the Connector.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: operation completions with group/tag/row counts (production-safe)
// Warn level: non-critical issues like cursor cleanup failures
// Error level: critical failures that cause operation failures.
func WithLogger(logger historian.Logger) Option {
	return func(c *Connector) error {
		c.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Connector.
// The contextual logger will receive log messages with context information including
// automatic trace/span correlation when tracing is enabled, enabling unified observability.
func WithContextualLogger(logger historian.ContextualLogger) Option {
	return func(c *Connector) error {
		c.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Connector.
// The metrics collector will receive performance and operational metrics including
// operation durations, result counts, and historian errors.
func WithMetrics(collector historian.MetricsCollector) Option {
	return func(c *Connector) error {
		c.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Connector.
// The tracing collector will receive distributed tracing information including
// one span per facade operation, context propagation, and error tracking.
func WithTracing(collector historian.TracingCollector) Option {
	return func(c *Connector) error {
		c.tracingCollector = collector
		return nil
	}
}
