package database

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sqlstash/sqlstash/internal/driver"
)

// DefaultConn is the connection name used when no named connections are
// configured.
const DefaultConn = "default"

// Manager hands out lazily created named connections. Each connection gets
// its own statement registry and query log; Logs exposes them together for
// cross-connection inspection.
type Manager struct {
	config *Config
	mu     sync.RWMutex
	conns  map[string]*Conn
}

// NewManager creates a manager over the given configuration. No connection
// is opened until first use.
func NewManager(config *Config) *Manager {
	return &Manager{
		config: config,
		conns:  make(map[string]*Conn),
	}
}

// Conn retrieves the named connection, creating it if necessary. The
// underlying database is not dialed here; the connection's first prepared
// statement does that.
func (m *Manager) Conn(name string) (*Conn, error) {
	if name == "" {
		name = DefaultConn
	}

	m.mu.RLock()
	c, ok := m.conns[name]
	m.mu.RUnlock()
	if ok {
		return c, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check in case another goroutine created the connection while
	// we were waiting for the lock.
	if c, ok := m.conns[name]; ok {
		return c, nil
	}

	cc, err := m.config.resolve(name)
	if err != nil {
		return nil, err
	}
	drv := driver.NewSQL(cc.Driver, cc.DSN)
	drv.Tune(m.config.MaxOpenConns, m.config.MaxIdleConns,
		time.Duration(m.config.ConnMaxIdleSec)*time.Second,
		time.Duration(m.config.ConnMaxLifeSec)*time.Second)

	c = NewConn(drv)
	m.conns[name] = c
	return c, nil
}

// Logs returns the query log of every connection created so far, keyed by
// connection name.
func (m *Manager) Logs() map[string]*Log {
	m.mu.RLock()
	defer m.mu.RUnlock()
	logs := make(map[string]*Log, len(m.conns))
	for name, c := range m.conns {
		logs[name] = c.Log()
	}
	return logs
}

// Close closes all connections.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var msgs []string
	for name, c := range m.conns {
		if err := c.Close(); err != nil {
			msgs = append(msgs, fmt.Sprintf("close connection %s: %v", name, err))
		}
	}
	m.conns = make(map[string]*Conn)
	if len(msgs) > 0 {
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}
