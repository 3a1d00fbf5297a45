package ip21engine

import (
	"fmt"

	"github.com/prochist/ip21-connector-go/historian"
)

// Connection defaults for a SQLplus endpoint. TIMEOUT and MAX_ROWS are
// driver-level parameters: TIMEOUT bounds the connect attempt in seconds,
// MAX_ROWS caps result sets inside the driver independently of the
// per-query limiting this engine does.
const (
	// DefaultODBCDriverName is the ODBC driver an InfoPlus.21 client install registers.
	DefaultODBCDriverName = "AspenTech SQLplus"

	// DefaultServerPort is the TCP port of the SQLplus service.
	DefaultServerPort = 10014

	// DefaultConnectTimeout is the driver connect timeout in seconds.
	DefaultConnectTimeout = 128

	driverMaxRows = 10

	connectionStringFormat = "DRIVER=%s;HOST=%s;PORT=%d;TIMEOUT=%d;MAX_ROWS=%d"
)

// Filter kinds a host may pass to tag listing.
const (
	FilterName     = "name"
	FilterTagsFile = "tags_file"
	FilterTime     = "time"
)

// Host-visible names of the data operations this connector implements.
const (
	OperationNameReadTagPeriod = "read_tag_period"
	OperationNameReadTagMeta   = "read_tag_meta"
)

// AttributeSpec describes one canonical attribute for host user interfaces:
// its value type and the name to display it under.
type AttributeSpec struct {
	Attribute   string
	Type        string
	DisplayName string
}

// ConnectionField describes one field of the connection form a host renders
// when registering a connector of this type.
type ConnectionField struct {
	Key          string
	DisplayName  string
	Type         string
	DefaultValue string
	Optional     bool
}

// TargetInfo describes one historian endpoint a host could connect to.
type TargetInfo struct {
	Name      string
	Endpoints []string
}

// SupportedFilters lists the filter kinds ListTags understands.
func SupportedFilters() []string {
	return []string{FilterName, FilterTagsFile, FilterTime}
}

// SupportedOperations lists the data operations this connector implements.
// Scalar value reads and writes are not among them; the historian is a
// read-only archive queried over periods.
func SupportedOperations() []string {
	return []string{OperationNameReadTagPeriod, OperationNameReadTagMeta}
}

// DefaultAttributeSpecs returns the canonical attributes a host should offer
// in tag browsers by default.
func DefaultAttributeSpecs() []AttributeSpec {
	return []AttributeSpec{
		{Attribute: historian.CanonicalName, Type: "str", DisplayName: "Tag Name"},
		{Attribute: historian.CanonicalEngUnits, Type: "str", DisplayName: "Eng Units"},
		{Attribute: historian.CanonicalType, Type: "str", DisplayName: "Type"},
		{Attribute: historian.CanonicalDescription, Type: "str", DisplayName: "Description"},
		{Attribute: historian.CanonicalPath, Type: "str", DisplayName: "Path"},
	}
}

// ListConnectionFields returns the connection form for this connector type.
func ListConnectionFields() []ConnectionField {
	return []ConnectionField{
		{Key: "server_host", DisplayName: "Server Host", Type: "str", Optional: false},
		{Key: "odbc_driver", DisplayName: "ODBC Driver", Type: "list", DefaultValue: DefaultODBCDriverName, Optional: false},
		{Key: "connection_string", DisplayName: "Connection String", Type: "str", Optional: true},
		{Key: "default_group", DisplayName: "Default Group", Type: "str", Optional: true},
	}
}

// ListRegisteredTargets returns the historian endpoints known without a live
// connection. SQLplus endpoints do not announce themselves, so the list is
// always empty.
func ListRegisteredTargets() []TargetInfo {
	return []TargetInfo{}
}

// TargetInfoFor describes a single historian endpoint. There is no discovery
// protocol to ask, so the description carries only the host name.
func TargetInfoFor(host string) TargetInfo {
	return TargetInfo{Name: host}
}

// BuildConnectionString renders the ODBC connection string for a SQLplus
// endpoint. A non-positive port or timeout falls back to the InfoPlus.21
// defaults.
func BuildConnectionString(host string, port int, timeoutSeconds int) string {
	if port <= 0 {
		port = DefaultServerPort
	}

	if timeoutSeconds <= 0 {
		timeoutSeconds = DefaultConnectTimeout
	}

	return fmt.Sprintf(connectionStringFormat, DefaultODBCDriverName, host, port, timeoutSeconds, driverMaxRows)
}
