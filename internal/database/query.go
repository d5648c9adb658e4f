package database

import (
	"strconv"

	"github.com/sqlstash/sqlstash/internal/driver"
)

// Query prepares and executes a SELECT in one call, returning the live
// statement ID for iteration with Fetch. Non-SELECT statements and
// execution failures auto-close and return (NoStatement, false).
func (c *Conn) Query(query string, args ...any) (StatementID, bool) {
	return c.QueryStyle(driver.FetchIndexed, query, args...)
}

// QueryStyle is Query with an explicit row shape.
func (c *Conn) QueryStyle(style driver.FetchStyle, query string, args ...any) (StatementID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queryLocked(style, query, args)
}

func (c *Conn) queryLocked(style driver.FetchStyle, query string, args []any) (StatementID, bool) {
	id := c.prepareLocked(style, query)
	if id == NoStatement {
		return NoStatement, false
	}
	if c.stmts[id].kind != KindSelect {
		c.closeLocked(id)
		return NoStatement, false
	}
	if _, ok := c.execLocked(id, args); !ok {
		c.closeLocked(id)
		return NoStatement, false
	}
	return id, true
}

// All runs a SELECT and drains every row. The result is never nil; zero
// rows yield an empty slice. The statement is closed before returning.
func (c *Conn) All(query string, args ...any) []driver.Row {
	return c.AllStyle(driver.FetchIndexed, query, args...)
}

// AllStyle is All with an explicit row shape.
func (c *Conn) AllStyle(style driver.FetchStyle, query string, args ...any) []driver.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := []driver.Row{}
	id, ok := c.queryLocked(style, query, args)
	if !ok {
		return rows
	}
	for {
		row, more := c.fetchLocked(id)
		if !more {
			break
		}
		rows = append(rows, row)
	}
	c.closeLocked(id)
	return rows
}

// IDs runs a SELECT and returns the first column of every row coerced to
// int64, textual columns included. Zero rows yield (nil, false) rather than
// an empty slice.
func (c *Conn) IDs(query string, args ...any) ([]int64, bool) {
	rows := c.All(query, args...)
	if len(rows) == 0 {
		return nil, false
	}
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = toInt64(row.First())
	}
	return ids, true
}

// Row runs a SELECT and returns only its first row. An empty result and a
// failed query both yield (zero Row, false); callers that need to tell the
// two apart must use Query and Fetch directly.
func (c *Conn) Row(query string, args ...any) (driver.Row, bool) {
	return c.RowStyle(driver.FetchIndexed, query, args...)
}

// RowStyle is Row with an explicit row shape.
func (c *Conn) RowStyle(style driver.FetchStyle, query string, args ...any) (driver.Row, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.queryLocked(style, query, args)
	if !ok {
		return driver.Row{}, false
	}
	row, found := c.fetchLocked(id)
	c.closeLocked(id)
	return row, found
}

// Value runs a SELECT and returns the first column of the first row. Like
// Row, it does not distinguish an empty result from a failed query.
func (c *Conn) Value(query string, args ...any) (any, bool) {
	row, ok := c.Row(query, args...)
	if !ok {
		return nil, false
	}
	return row.First(), true
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case uint64:
		return int64(t)
	case float64:
		return int64(t)
	case []byte:
		n, _ := strconv.ParseInt(string(t), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	default:
		return 0
	}
}
