package ip21engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/prochist/ip21-connector-go/historian"
	"github.com/prochist/ip21-connector-go/historian/ip21engine/internal/adapters"
)

const (
	// ConnectorType identifies this connector implementation to a host plugin registry.
	ConnectorType = "aspen-ip21"

	// ConnectorCategory is the registry category this connector belongs to.
	ConnectorCategory = "historian"

	// DefaultGroupTagDelimiter separates the group and name parts of a tag address.
	DefaultGroupTagDelimiter = ":"

	defaultConnectionName = "ip21_client"

	logMsgResolveAddressesFailed = "failed to resolve tag addresses"
	logMsgBuildQueryFailed       = "failed to build historian query"
	logMsgDBQueryFailed          = "historian query execution failed"
	logMsgAdvanceResultSetFailed = "failed to advance to the limited result set"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgReadColumnsFailed      = "failed to read result set columns"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgRowIterationFailed     = "row iteration failed"
	logMsgNormalizeRowsFailed    = "failed to normalize trend rows"
	logMsgConnectFailed          = "failed to establish historian session"
	logMsgConnected              = "session established"
	logMsgDisconnected           = "session closed"
	logMsgListingCompleted       = "tag listing completed"
	logMsgAttributeReadCompleted = "attribute read completed"
	logMsgPeriodReadCompleted    = "period read completed"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "historian operation: "

	logAttrError         = "error"
	logAttrQuery         = "query"
	logAttrDurationMS    = "duration_ms"
	logAttrGroup         = "group"
	logAttrGroupCount    = "group_count"
	logAttrTagCount      = "tag_count"
	logAttrRowCount      = "row_count"
	logAttrRowsDiscarded = "rows_discarded"
	logAttrSessionID     = "session_id"
	logAttrDialect       = "dialect"

	operationListTags       = "list_tags"
	operationReadAttributes = "read_tag_attributes"
	operationReadPeriod     = "read_tag_values_period"

	descriptorPairSeparator  = ";"
	descriptorValueSeparator = "="
	descriptorHostKey        = "host"
	descriptorServerKey      = "server"
)

type (
	sqlQueryString = string
	queryDuration  = time.Duration
)

// ProgressFunc receives the group identifier immediately before that group's
// query executes, so callers can surface progress during multi-group reads.
type ProgressFunc func(group string)

// ListOptions controls column selection and row limiting for ListTags.
// A non-empty Attributes list implies attribute retrieval regardless of
// IncludeAttributes; IncludeAttributes alone selects every native column.
type ListOptions struct {
	IncludeAttributes bool
	Attributes        []string
	MaxResults        int
}

// ReadOptions controls a period read. Zero timestamps leave the window open
// on that side. A positive Frequency switches the read to the aggregated
// history table, resampled at that frequency.
type ReadOptions struct {
	FirstTimestamp time.Time
	LastTimestamp  time.Time
	Frequency      time.Duration
	MaxResults     int
	Progress       ProgressFunc
}

// ConnectionInfo describes the active historian session.
type ConnectionInfo struct {
	OneLiner    string
	ServerName  string
	Description string
	Version     string
	SessionID   string
}

// Connector is the facade over one historian backend session. It resolves
// tag addresses, builds dialect-correct queries, executes them through a
// database adapter, and assembles canonical results.
//
// A Connector instance owns its backend session exclusively and is not safe
// for concurrent use; callers must serialize access themselves.
type Connector struct {
	db               adapters.DBAdapter
	descriptor       string
	connectionName   string
	delimiter        string
	defaultGroup     string
	attributes       historian.AttributeMap
	dialectAdapter   dialectAdapter
	resolver         historian.AddressResolver
	builder          queryBuilder
	assembler        resultAssembler
	connected        bool
	sessionID        uuid.UUID
	logger           historian.Logger
	contextualLogger historian.ContextualLogger
	metricsCollector historian.MetricsCollector
	tracingCollector historian.TracingCollector
}

// NewConnectorFromSQLDB creates a Connector on a sql.DB handle, typically an
// ODBC bridge to the historian, with optional configuration. The connection
// descriptor is the driver connection string; it decides the SQL dialect.
func NewConnectorFromSQLDB(db *sql.DB, connectionDescriptor string, options ...Option) (*Connector, error) {
	if db == nil {
		return nil, historian.ErrNilDatabaseConnection
	}

	return newConnector(adapters.NewSQLAdapter(db), connectionDescriptor, options...)
}

// NewConnectorFromSQLX creates a Connector on a sqlx.DB handle with optional configuration.
func NewConnectorFromSQLX(db *sqlx.DB, connectionDescriptor string, options ...Option) (*Connector, error) {
	if db == nil {
		return nil, historian.ErrNilDatabaseConnection
	}

	return newConnector(adapters.NewSQLXAdapter(db), connectionDescriptor, options...)
}

// NewConnectorFromPGXPool creates a Connector on a pgx pool with optional
// configuration, for historian mirrors hosted on PostgreSQL.
func NewConnectorFromPGXPool(pool *pgxpool.Pool, connectionDescriptor string, options ...Option) (*Connector, error) {
	if pool == nil {
		return nil, historian.ErrNilDatabaseConnection
	}

	return newConnector(adapters.NewPGXAdapter(pool), connectionDescriptor, options...)
}

func newConnector(db adapters.DBAdapter, connectionDescriptor string, options ...Option) (*Connector, error) {
	c := &Connector{
		db:             db,
		descriptor:     connectionDescriptor,
		connectionName: defaultConnectionName,
		delimiter:      DefaultGroupTagDelimiter,
		attributes:     historian.DefaultAttributeMap(),
		dialectAdapter: adapterForDialect(DetectDialect(connectionDescriptor)),
	}

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	resolver, resolverErr := historian.NewAddressResolver(c.delimiter, c.defaultGroup)
	if resolverErr != nil {
		return nil, resolverErr
	}

	c.resolver = resolver
	c.builder = queryBuilder{dialect: c.dialectAdapter, attributes: c.attributes}
	c.assembler = resultAssembler{resolver: resolver, attributes: c.attributes}

	return c, nil
}

// Dialect returns the dialect fixed at construction time.
func (c *Connector) Dialect() Dialect {
	return c.dialectAdapter.dialect()
}

// ConnectionName returns the configured name of this connector instance.
func (c *Connector) ConnectionName() string {
	return c.connectionName
}

// Connected reports whether the connector holds an established session.
func (c *Connector) Connected() bool {
	return c.connected
}

// Connect verifies the backend is reachable and establishes the session.
// Connecting an already connected instance fails.
func (c *Connector) Connect(ctx context.Context) error {
	if c.connected {
		return historian.ErrAlreadyConnected
	}

	if pingErr := c.db.Ping(ctx); pingErr != nil {
		c.logError(ctx, logMsgConnectFailed, pingErr)
		return errors.Join(historian.ErrConnectFailed, pingErr)
	}

	c.sessionID = uuid.New()
	c.connected = true

	c.logOperation(ctx, logMsgConnected,
		logAttrSessionID, c.sessionID.String(),
		logAttrDialect, c.Dialect().String())

	return nil
}

// Disconnect ends the session. The underlying database handle stays open,
// it belongs to the caller.
func (c *Connector) Disconnect(ctx context.Context) error {
	if preconditionErr := c.requireConnected(); preconditionErr != nil {
		return preconditionErr
	}

	c.logOperation(ctx, logMsgDisconnected, logAttrSessionID, c.sessionID.String())

	c.connected = false
	c.sessionID = uuid.Nil

	return nil
}

// ConnectionInfo describes the active session. It fails while disconnected.
func (c *Connector) ConnectionInfo() (ConnectionInfo, error) {
	if preconditionErr := c.requireConnected(); preconditionErr != nil {
		return ConnectionInfo{}, preconditionErr
	}

	serverName := serverNameFromDescriptor(c.descriptor)

	return ConnectionInfo{
		OneLiner:   fmt.Sprintf("[%s] ODBC://%s", ConnectorType, serverName),
		ServerName: serverName,
		SessionID:  c.sessionID.String(),
	}, nil
}

// ListTags lists the tags matching the given address filters, merged across
// groups into one TagSet keyed by fully qualified address. An empty filter
// list reads everything in the default group.
func (c *Connector) ListTags(ctx context.Context, filters []string, options ListOptions) (historian.TagSet, error) {
	observer, ctx := c.startOperationObserver(ctx, operationListTags)

	if preconditionErr := c.requireConnected(); preconditionErr != nil {
		observer.fail(errorTypePrecondition)
		return nil, preconditionErr
	}

	if len(filters) == 0 {
		filters = []string{""}
	}

	groupMap, resolveErr := c.resolver.Resolve(filters)
	if resolveErr != nil {
		c.logError(ctx, logMsgResolveAddressesFailed, resolveErr)
		observer.fail(errorTypeAddress)
		return nil, resolveErr
	}

	tagSet, browseErr := c.browseGroups(ctx, groupMap, listProjection(options), options.MaxResults, observer)
	if browseErr != nil {
		return nil, browseErr
	}

	c.logOperation(ctx, logMsgListingCompleted,
		logAttrGroupCount, groupMap.Len(),
		logAttrTagCount, len(tagSet))
	observer.succeed(len(tagSet))

	return tagSet, nil
}

// ReadTagAttributes reads attribute values for the given tags. A nil or
// empty attribute list reads all native columns plus canonical enrichment;
// otherwise exactly the requested attributes are returned.
func (c *Connector) ReadTagAttributes(ctx context.Context, tags []string, attributes []string) (historian.TagSet, error) {
	observer, ctx := c.startOperationObserver(ctx, operationReadAttributes)

	if preconditionErr := c.requireConnected(); preconditionErr != nil {
		observer.fail(errorTypePrecondition)
		return nil, preconditionErr
	}

	groupMap, resolveErr := c.resolver.Resolve(tags)
	if resolveErr != nil {
		c.logError(ctx, logMsgResolveAddressesFailed, resolveErr)
		observer.fail(errorTypeAddress)
		return nil, resolveErr
	}

	tagSet, browseErr := c.browseGroups(ctx, groupMap, attributeProjection(attributes), 0, observer)
	if browseErr != nil {
		return nil, browseErr
	}

	c.logOperation(ctx, logMsgAttributeReadCompleted,
		logAttrGroupCount, groupMap.Len(),
		logAttrTagCount, len(tagSet))
	observer.succeed(len(tagSet))

	return tagSet, nil
}

// ReadTagValues is not supported by this historian: the backend has no
// scalar current-value endpoint, values are read over a period instead.
func (c *Connector) ReadTagValues(_ context.Context, _ []string) (historian.TagSet, error) {
	if preconditionErr := c.requireConnected(); preconditionErr != nil {
		return nil, preconditionErr
	}

	return nil, historian.ErrUnsupportedOperation
}

// WriteTagValues is not supported by this historian: the backend is a
// read-only archive from this connector's point of view.
func (c *Connector) WriteTagValues(_ context.Context, _ map[string]any) error {
	if preconditionErr := c.requireConnected(); preconditionErr != nil {
		return preconditionErr
	}

	return historian.ErrUnsupportedOperation
}

// ReadTagValuesPeriod reads time-series values for the given tags over a
// time window and pivots them into a wide Frame: one row per timestamp, one
// column per requested tag short name, in request order. Groups are read
// strictly in resolution order; a failing group fails the whole call.
func (c *Connector) ReadTagValuesPeriod(ctx context.Context, tags []string, options ReadOptions) (*historian.Frame, error) {
	observer, ctx := c.startOperationObserver(ctx, operationReadPeriod)

	if preconditionErr := c.requireConnected(); preconditionErr != nil {
		observer.fail(errorTypePrecondition)
		return nil, preconditionErr
	}

	shortNames, groupMap, resolveErr := c.resolvePeriodTags(tags)
	if resolveErr != nil {
		c.logError(ctx, logMsgResolveAddressesFailed, resolveErr)
		observer.fail(errorTypeAddress)
		return nil, resolveErr
	}

	window := timeWindow{first: options.FirstTimestamp, last: options.LastTimestamp}

	var samples []historian.Sample

	if options.Frequency > 0 {
		historySamples, readErr := c.readHistorySamples(ctx, shortNames, window, options, observer)
		if readErr != nil {
			return nil, readErr
		}

		samples = historySamples
	} else {
		for _, group := range groupMap.Groups() {
			if options.Progress != nil {
				options.Progress(group)
			}

			groupSamples, readErr := c.readTrendSamples(ctx, group, groupMap.Patterns(group), window, options.MaxResults, observer)
			if readErr != nil {
				return nil, readErr
			}

			samples = append(samples, groupSamples...)
		}
	}

	frame, discarded := historian.PivotSamples(shortNames, samples)

	c.logOperation(ctx, logMsgPeriodReadCompleted,
		logAttrGroupCount, groupMap.Len(),
		logAttrRowCount, frame.NumRows(),
		logAttrRowsDiscarded, discarded)
	observer.succeed(frame.NumRows())

	return frame, nil
}

// browseGroups runs one listing query per group and merges the results.
func (c *Connector) browseGroups(
	ctx context.Context,
	groupMap historian.GroupMap,
	proj projection,
	maxResults int,
	observer *operationObserver,
) (historian.TagSet, error) {

	tagSet := make(historian.TagSet)

	for _, group := range groupMap.Groups() {
		sqlQuery, advance, buildErr := c.builder.buildListQuery(group, groupMap.Patterns(group), proj, maxResults)
		if buildErr != nil {
			c.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrGroup, group)
			observer.fail(errorTypeBuildQuery)
			return nil, buildErr
		}

		nativeRows, readErr := c.queryRows(ctx, sqlQuery, advance, observer)
		if readErr != nil {
			return nil, readErr
		}

		c.assembler.mergeListing(tagSet, group, nativeRows, proj)
	}

	return tagSet, nil
}

// readTrendSamples reads one group's trend rows and normalizes them.
func (c *Connector) readTrendSamples(
	ctx context.Context,
	group string,
	patterns []string,
	window timeWindow,
	maxResults int,
	observer *operationObserver,
) ([]historian.Sample, error) {

	sqlQuery, advance, buildErr := c.builder.buildTrendQuery(group, patterns, window, maxResults)
	if buildErr != nil {
		c.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrGroup, group)
		observer.fail(errorTypeBuildQuery)
		return nil, buildErr
	}

	return c.querySamples(ctx, sqlQuery, advance, observer)
}

// readHistorySamples reads resampled values from the shared history table.
// Group prefixes play no role there, the table spans all groups.
func (c *Connector) readHistorySamples(
	ctx context.Context,
	shortNames []string,
	window timeWindow,
	options ReadOptions,
	observer *operationObserver,
) ([]historian.Sample, error) {

	patterns := make([]string, len(shortNames))
	for i, name := range shortNames {
		patterns[i] = c.resolver.NormalizePattern(name)
	}

	sqlQuery, advance, buildErr := c.builder.buildHistoryQuery(patterns, window, options.Frequency, options.MaxResults)
	if buildErr != nil {
		c.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrGroup, historyTableName)
		observer.fail(errorTypeBuildQuery)
		return nil, buildErr
	}

	if options.Progress != nil {
		options.Progress(historyTableName)
	}

	return c.querySamples(ctx, sqlQuery, advance, observer)
}

// querySamples executes a period query and normalizes the rows into samples.
func (c *Connector) querySamples(
	ctx context.Context,
	sqlQuery sqlQueryString,
	advance bool,
	observer *operationObserver,
) ([]historian.Sample, error) {

	nativeRows, readErr := c.queryRows(ctx, sqlQuery, advance, observer)
	if readErr != nil {
		return nil, readErr
	}

	samples, normalizeErr := c.assembler.normalizeSamples(nativeRows)
	if normalizeErr != nil {
		c.logError(ctx, logMsgNormalizeRowsFailed, normalizeErr)
		observer.fail(errorTypeNormalize)
		return nil, normalizeErr
	}

	return samples, nil
}

// queryRows executes a query and drains the cursor into native rows.
func (c *Connector) queryRows(
	ctx context.Context,
	sqlQuery sqlQueryString,
	advance bool,
	observer *operationObserver,
) ([]historian.Row, error) {

	rows, queryErr := c.executeQuery(ctx, sqlQuery, advance, observer.operation)
	if queryErr != nil {
		observer.fail(errorTypeQuery)
		return nil, queryErr
	}

	nativeRows, collectErr := c.collectRows(ctx, rows)
	if collectErr != nil {
		observer.fail(errorTypeScan)
		return nil, collectErr
	}

	return nativeRows, nil
}

// executeQuery executes the SQL query with timing and, for the native
// row-limit directive, advances the cursor past the directive's empty
// result set so the caller always fetches data rows.
func (c *Connector) executeQuery(ctx context.Context, sqlQuery sqlQueryString, advance bool, action string) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := c.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	c.logQueryWithDuration(ctx, sqlQuery, action, duration)

	if queryErr != nil {
		c.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, errors.Join(historian.ErrQueryingHistorianFailed, queryErr)
	}

	if advance && !rows.NextResultSet() {
		advanceErr := rows.Err()
		c.closeRows(rows)

		if advanceErr != nil {
			c.logError(ctx, logMsgAdvanceResultSetFailed, advanceErr, logAttrQuery, sqlQuery)
			return nil, errors.Join(historian.ErrAdvancingResultSetFailed, advanceErr)
		}

		return nil, historian.ErrAdvancingResultSetFailed
	}

	return rows, nil
}

// collectRows drains and closes the cursor, returning rows keyed by column
// name. Byte-slice cells are turned into strings, drivers without type
// information return text columns that way.
func (c *Connector) collectRows(ctx context.Context, rows adapters.DBRows) ([]historian.Row, error) {
	defer c.closeRows(rows)

	columns, columnsErr := rows.Columns()
	if columnsErr != nil {
		c.logError(ctx, logMsgReadColumnsFailed, columnsErr)
		return nil, errors.Join(historian.ErrReadingColumnsFailed, columnsErr)
	}

	nativeRows := make([]historian.Row, 0)

	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if scanErr := rows.Scan(pointers...); scanErr != nil {
			c.logError(ctx, logMsgScanRowFailed, scanErr)
			return nil, errors.Join(historian.ErrScanningRowFailed, scanErr)
		}

		row := make(historian.Row, len(columns))
		for i, column := range columns {
			if bytes, isBytes := values[i].([]byte); isBytes {
				row[column] = string(bytes)
			} else {
				row[column] = values[i]
			}
		}

		nativeRows = append(nativeRows, row)
	}

	if iterationErr := rows.Err(); iterationErr != nil {
		c.logError(ctx, logMsgRowIterationFailed, iterationErr)
		return nil, errors.Join(historian.ErrQueryingHistorianFailed, iterationErr)
	}

	return nativeRows, nil
}

// closeRows safely closes database rows and logs any errors.
func (c *Connector) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if c.logger != nil {
			c.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

// requireConnected is the precondition guard of every data operation.
func (c *Connector) requireConnected() error {
	if !c.connected {
		return historian.ErrNotConnected
	}

	return nil
}

// resolvePeriodTags derives the frame column names (short names in request
// order) and the per-group pattern map from the requested tag addresses.
func (c *Connector) resolvePeriodTags(tags []string) ([]string, historian.GroupMap, error) {
	shortNames := make([]string, 0, len(tags))

	for _, tag := range tags {
		_, name, splitErr := c.resolver.Split(tag)
		if splitErr != nil {
			return nil, historian.GroupMap{}, splitErr
		}

		shortNames = append(shortNames, name)
	}

	groupMap, resolveErr := c.resolver.Resolve(tags)
	if resolveErr != nil {
		return nil, historian.GroupMap{}, resolveErr
	}

	return shortNames, groupMap, nil
}

// listProjection derives the column selection from the listing options.
func listProjection(options ListOptions) projection {
	if len(options.Attributes) > 0 {
		return projection{mode: projectAttributeList, attributes: options.Attributes}
	}

	if options.IncludeAttributes {
		return projection{mode: projectAllColumns}
	}

	return projection{mode: projectNameOnly}
}

// attributeProjection derives the column selection for an attribute read.
func attributeProjection(attributes []string) projection {
	if len(attributes) > 0 {
		return projection{mode: projectAttributeList, attributes: attributes}
	}

	return projection{mode: projectAllColumns}
}

// serverNameFromDescriptor extracts the server host from a key=value style
// connection descriptor, empty when the descriptor carries none.
func serverNameFromDescriptor(descriptor string) string {
	for _, pair := range strings.Split(descriptor, descriptorPairSeparator) {
		key, value, found := strings.Cut(pair, descriptorValueSeparator)
		if !found {
			continue
		}

		switch strings.ToLower(strings.TrimSpace(key)) {
		case descriptorHostKey, descriptorServerKey:
			return strings.TrimSpace(value)
		}
	}

	return ""
}
