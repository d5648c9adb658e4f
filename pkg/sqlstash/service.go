// Package sqlstash provides a library-first API over the statement registry
// without pulling callers into internal packages.
package sqlstash

import (
	"github.com/sqlstash/sqlstash/internal/database"
	"github.com/sqlstash/sqlstash/internal/driver"
)

// Re-exported core types. Conn carries the full prepare/exec/fetch/close
// surface plus the insert, update, upsert and query helpers.
type (
	Conn        = database.Conn
	Log         = database.Log
	LogEntry    = database.LogEntry
	Record      = database.Record
	StatementID = database.StatementID
	Row         = driver.Row
	FetchStyle  = driver.FetchStyle
)

// NoStatement is the failure sentinel returned by prepare operations.
const NoStatement = database.NoStatement

// Fetch styles for PrepareStyle, QueryStyle and friends.
const (
	FetchIndexed  = driver.FetchIndexed
	FetchAssoc    = driver.FetchAssoc
	FetchAssocDup = driver.FetchAssocDup
	FetchCombined = driver.FetchCombined
	FetchObject   = driver.FetchObject
)

// FetchStyleFor maps a textual hint ("assoc", "object", ...) to a fetch
// style, defaulting to FetchIndexed.
func FetchStyleFor(hint string) FetchStyle {
	return driver.FetchStyleFor(hint)
}

// Service hands out named lazy connections per its configuration.
type Service struct {
	mgr *database.Manager
}

// NewService constructs a Service with the provided config.
func NewService(cfg *Config) (*Service, error) {
	internal, err := cfg.toInternal()
	if err != nil {
		return nil, err
	}
	return &Service{mgr: database.NewManager(internal)}, nil
}

// NewServiceFromEnv constructs a Service configured from SQLSTASH_*
// environment variables.
func NewServiceFromEnv() *Service {
	return &Service{mgr: database.NewManager(database.NewConfig())}
}

// Conn retrieves the named connection, creating it lazily. An empty name
// selects the default connection.
func (s *Service) Conn(name string) (*Conn, error) {
	return s.mgr.Conn(name)
}

// Logs returns every connection's query log keyed by connection name.
func (s *Service) Logs() map[string]*Log {
	return s.mgr.Logs()
}

// Close releases all connections.
func (s *Service) Close() error { return s.mgr.Close() }

// Open wraps a single driver/DSN pair in a standalone connection, for
// callers that do not need named connections.
func Open(driverName, dsn string) *Conn {
	return database.NewConn(driver.NewSQL(driverName, dsn))
}
