package database

import (
	"log"
	"strings"
	"time"

	"github.com/sqlstash/sqlstash/internal/driver"
	"github.com/sqlstash/sqlstash/internal/metrics"
)

// StatementID is a connection-scoped handle for a prepared statement.
// NoStatement is the failure sentinel; valid IDs start at 1 and are never
// reused within a connection's lifetime.
type StatementID int

// NoStatement is returned when preparation fails.
const NoStatement StatementID = 0

// StatementKind classifies a statement by its leading keyword.
type StatementKind int

const (
	KindOther StatementKind = iota
	KindInsert
	KindUpdate
	KindSelect
	KindDelete
)

func kindOf(sqlText string) StatementKind {
	fields := strings.Fields(sqlText)
	if len(fields) == 0 {
		return KindOther
	}
	switch strings.ToUpper(fields[0]) {
	case "INSERT":
		return KindInsert
	case "UPDATE":
		return KindUpdate
	case "SELECT":
		return KindSelect
	case "DELETE":
		return KindDelete
	default:
		return KindOther
	}
}

// upsertSet references the mutation statements paired with an upsert's
// lookup statement. Closing the lookup closes both children.
type upsertSet struct {
	update StatementID
	insert StatementID
}

type stmt struct {
	handle    driver.Handle
	params    int
	kind      StatementKind
	style     driver.FetchStyle
	composite *upsertSet
}

// Prepare registers query and returns its statement ID, or NoStatement if
// the driver rejects it. The failed attempt still gets a log entry carrying
// the driver's error text. SELECT statements fetch with the default
// positional row shape; use PrepareStyle for a different one.
func (c *Conn) Prepare(query string) StatementID {
	return c.PrepareStyle(driver.FetchIndexed, query)
}

// PrepareStyle is Prepare with an explicit fetch style for SELECT
// statements. The style is ignored for non-SELECT statements.
func (c *Conn) PrepareStyle(style driver.FetchStyle, query string) StatementID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prepareLocked(style, query)
}

// PrepareLines joins the fragments with newlines before preparing, for
// callers assembling long statements.
func (c *Conn) PrepareLines(style driver.FetchStyle, lines ...string) StatementID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prepareLocked(style, strings.Join(lines, "\n"))
}

func (c *Conn) prepareLocked(style driver.FetchStyle, query string) StatementID {
	query = strings.TrimSpace(query)
	id := c.log.open(query)
	done := metrics.TimeStmt("prepare")

	start := time.Now()
	handle, err := c.drv.Prepare(query)
	c.log.addPrepare(id, time.Since(start))
	if err != nil {
		c.log.addError(id, err.Error())
		done(false)
		return NoStatement
	}

	s := &stmt{
		handle: handle,
		params: strings.Count(query, "?"),
		kind:   kindOf(query),
	}
	if s.kind == KindSelect {
		s.style = style
	}
	c.stmts[id] = s
	metrics.Default().SetRegistrySize(c.id, len(c.stmts))
	done(true)
	return id
}

// Exec runs a prepared statement. It is the single choke point every
// convenience helper funnels through, so usage counters stay consistent
// regardless of call path. The result is 1 for SELECT (fetching begins
// separately), the inserted row ID for INSERT, and the affected-row count
// otherwise. Unknown IDs and driver failures yield (0, false); driver error
// text is appended to the statement's log entry.
func (c *Conn) Exec(id StatementID, args ...any) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.execLocked(id, args)
}

func (c *Conn) execLocked(id StatementID, args []any) (int64, bool) {
	s, ok := c.stmts[id]
	if !ok {
		return 0, false
	}
	row := normalizeArgs(args, s.params)
	done := metrics.TimeStmt("exec")

	start := time.Now()
	var result int64
	var err error
	if s.kind == KindSelect {
		err = s.handle.Query(row)
		result = 1
	} else {
		var info driver.ExecInfo
		info, err = s.handle.Exec(row)
		if s.kind == KindInsert {
			result = info.LastInsertID
		} else {
			result = info.AffectedRows
		}
	}
	elapsed := time.Since(start)

	if err != nil {
		c.log.addError(id, err.Error())
		done(false)
		return 0, false
	}
	c.log.addExec(id, elapsed)
	done(true)
	return result, true
}

// normalizeArgs coerces caller arguments into a positional value row. A
// single non-slice argument binds only when the statement takes exactly one
// parameter; otherwise it is dropped. Rows longer than the parameter count
// are truncated; short rows pass through and surface as driver errors.
func normalizeArgs(args []any, params int) []any {
	row := args
	if len(args) == 1 {
		if r, ok := args[0].([]any); ok {
			row = r
		} else if params != 1 {
			row = nil
		}
	}
	if len(row) > params {
		row = row[:params]
	}
	return row
}

// Fetch returns the next row of an executed SELECT statement. Non-SELECT
// statements and unknown IDs yield a zero row and false.
func (c *Conn) Fetch(id StatementID) (driver.Row, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchLocked(id)
}

func (c *Conn) fetchLocked(id StatementID) (driver.Row, bool) {
	s, ok := c.stmts[id]
	if !ok || s.kind != KindSelect {
		return driver.Row{}, false
	}
	return s.handle.Fetch(s.style)
}

// CloseStmt releases a prepared statement. Closing an unknown or already
// closed ID is a no-op. An upsert's paired statements are closed before the
// lookup itself. The log entry is retained.
func (c *Conn) CloseStmt(id StatementID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked(id)
}

func (c *Conn) closeLocked(id StatementID) {
	s, ok := c.stmts[id]
	if !ok {
		return
	}
	if s.composite != nil {
		c.closeLocked(s.composite.update)
		c.closeLocked(s.composite.insert)
	}
	if err := s.handle.Close(); err != nil {
		log.Printf("sqlstash: close statement %d: %v", id, err)
	}
	delete(c.stmts, id)
	metrics.Default().SetRegistrySize(c.id, len(c.stmts))
}
