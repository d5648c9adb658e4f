package database

import (
	"sync"

	"github.com/google/uuid"

	"github.com/sqlstash/sqlstash/internal/driver"
	"github.com/sqlstash/sqlstash/internal/metrics"
)

// Conn wraps a single driver connection with a prepared-statement registry,
// per-statement profiling and insert/update/upsert convenience helpers.
// Statement IDs are scoped to one Conn and are never reused; closing a
// statement removes its registry entry but its log entry persists.
//
// All registry operations are synchronous and take the Conn mutex, so a
// Conn may be shared across goroutines, though statement handles carry a
// single row cursor and interleaved fetches on the same ID will race
// logically.
type Conn struct {
	id  string
	drv driver.Driver

	mu    sync.Mutex
	stmts map[StatementID]*stmt
	log   *Log
}

// NewConn wraps drv in a new connection-scoped registry. The driver is not
// connected; the first prepared statement establishes the connection.
func NewConn(drv driver.Driver) *Conn {
	return &Conn{
		id:    uuid.NewString(),
		drv:   drv,
		stmts: make(map[StatementID]*stmt),
		log:   NewLog(),
	}
}

// ID returns the connection's unique instance identifier.
func (c *Conn) ID() string { return c.id }

// Log returns the connection's query log. The log persists entries for
// every statement ever prepared on this connection until Reset.
func (c *Conn) Log() *Log { return c.log }

// Driver exposes the underlying driver adapter.
func (c *Conn) Driver() driver.Driver { return c.drv }

// Live reports the number of open prepared statements.
func (c *Conn) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stmts)
}

// Close releases every open statement and the underlying connection.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.stmts {
		c.closeLocked(id)
	}
	metrics.Default().SetRegistrySize(c.id, 0)
	return c.drv.Close()
}
