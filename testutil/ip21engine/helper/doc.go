// Package helper provides testing utilities and observability spies for historian connector testing.
//
// This package contains shared testing infrastructure including a log handler spy
// for capturing and validating log output during tests, metrics and tracing spies
// for the connector's observability interfaces, and the tag fixtures used across
// the connector test suite.
package helper
