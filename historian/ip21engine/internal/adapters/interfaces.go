package adapters

import "context"

// DBAdapter defines the interface for database operations needed by the historian connector.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Ping(ctx context.Context) error
}

// DBRows defines the interface for query result rows.
// NextResultSet is used by backends that answer a statement batch with
// multiple result sets; implementations without that capability return false.
type DBRows interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	NextResultSet() bool
	Err() error
	Close() error
}
