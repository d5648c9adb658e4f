// Package driver defines the narrow capability surface the statement
// registry requires from an underlying database client: prepare, execute,
// fetch, close and escape primitives. The production implementation is
// backed by sqlx over any database/sql driver.
package driver

// ExecInfo reports the outcome of a non-query execution.
type ExecInfo struct {
	LastInsertID int64
	AffectedRows int64
}

// Handle is an open prepared statement owned by a Driver.
type Handle interface {
	// Query executes the statement and opens a row cursor for Fetch,
	// discarding any cursor left over from a previous execution.
	Query(args []any) error
	// Exec executes the statement without a result set.
	Exec(args []any) (ExecInfo, error)
	// Fetch returns the next row shaped per style, or false when the
	// cursor is exhausted or no cursor is open.
	Fetch(style FetchStyle) (Row, bool)
	Close() error
}

// Driver is the capability surface the statement registry consumes.
// Implementations connect lazily: Prepare must establish the underlying
// connection if it is not open yet.
type Driver interface {
	// Connect establishes the underlying connection. Safe to call more
	// than once; subsequent calls are no-ops.
	Connect() error
	Prepare(sqlText string) (Handle, error)
	// Escape renders a value for debug display. The result is not safe
	// for execution and must never be sent to the database.
	Escape(v any) string
	Close() error
}
