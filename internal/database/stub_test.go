package database

import (
	"fmt"

	"github.com/sqlstash/sqlstash/internal/driver"
)

// stubDriver scripts driver behavior for registry tests. Handles are handed
// out in prepare order; tests that need scripted results push handles onto
// the queue up front.
type stubDriver struct {
	prepareErr error
	queue      []*stubHandle
	prepared   []string
	handles    []*stubHandle
	closed     bool
}

func (d *stubDriver) Connect() error { return nil }

func (d *stubDriver) Prepare(sqlText string) (driver.Handle, error) {
	if d.prepareErr != nil {
		return nil, d.prepareErr
	}
	d.prepared = append(d.prepared, sqlText)
	var h *stubHandle
	if len(d.queue) > 0 {
		h = d.queue[0]
		d.queue = d.queue[1:]
	} else {
		h = &stubHandle{}
	}
	d.handles = append(d.handles, h)
	return h, nil
}

func (d *stubDriver) Escape(v any) string { return fmt.Sprintf("{%v}", v) }

func (d *stubDriver) Close() error {
	d.closed = true
	return nil
}

type stubHandle struct {
	queryErr error
	execErr  error
	info     driver.ExecInfo
	rows     []driver.Row

	queries    [][]any
	execs      [][]any
	cursorOpen bool
	next       int
	closed     bool
}

func (h *stubHandle) Query(args []any) error {
	if h.queryErr != nil {
		return h.queryErr
	}
	h.queries = append(h.queries, args)
	h.cursorOpen = true
	h.next = 0
	return nil
}

func (h *stubHandle) Exec(args []any) (driver.ExecInfo, error) {
	if h.execErr != nil {
		return driver.ExecInfo{}, h.execErr
	}
	h.execs = append(h.execs, args)
	return h.info, nil
}

func (h *stubHandle) Fetch(driver.FetchStyle) (driver.Row, bool) {
	if !h.cursorOpen || h.next >= len(h.rows) {
		return driver.Row{}, false
	}
	row := h.rows[h.next]
	h.next++
	return row, true
}

func (h *stubHandle) Close() error {
	h.closed = true
	return nil
}

func indexedRow(vals ...any) driver.Row {
	return driver.Row{Values: vals}
}
