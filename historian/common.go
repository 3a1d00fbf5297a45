package historian

import (
	"errors"
)

var ErrNoGroupInAddress = errors.New("tag address has no group part and no default group is configured")
var ErrInvalidDelimiter = errors.New("group/tag delimiter must be a single character that cannot occur in tag names")
var ErrInvalidDefaultGroup = errors.New("default group must not contain the delimiter or wildcard characters")
var ErrDuplicateCanonicalName = errors.New("attribute map would map two native names to the same canonical name")
var ErrEmptyAttributeMap = errors.New("attribute map must hold at least one name pair")
var ErrNotConnected = errors.New("connector is not connected")
var ErrAlreadyConnected = errors.New("connector is already connected")
var ErrUnsupportedOperation = errors.New("operation is not supported by this historian")
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrEmptyConnectionName = errors.New("empty connection name supplied")
var ErrConnectFailed = errors.New("establishing the historian session failed")
var ErrBuildingQueryFailed = errors.New("building historian query failed")
var ErrQueryingHistorianFailed = errors.New("querying the historian failed")
var ErrReadingColumnsFailed = errors.New("reading result set columns failed")
var ErrScanningRowFailed = errors.New("scanning result row failed")
var ErrAdvancingResultSetFailed = errors.New("advancing to the limited result set failed")
var ErrInvalidTimestamp = errors.New("result row carries an unreadable timestamp")

// GroupNameString is a type alias for string, representing a backend record table ("group") name.
type GroupNameString = string

// TagPatternString is a type alias for string, representing a tag name pattern with SQL wildcards applied.
type TagPatternString = string

// Wildcard characters: clients write ClientWildcard in tag addresses,
// the backend understands PatternWildcard in LIKE predicates.
const (
	ClientWildcard  = "*"
	PatternWildcard = "%"
)
