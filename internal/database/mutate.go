package database

import (
	"sort"
	"strings"

	"github.com/sqlstash/sqlstash/internal/driver"
)

// Record is a single column-name to value mapping for the one-shot insert,
// update and upsert variants. Columns are bound in sorted order so the
// generated SQL is deterministic.
type Record map[string]any

func (r Record) columns() []string {
	cols := make([]string, 0, len(r))
	for c := range r {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

func (r Record) values(cols []string) []any {
	vals := make([]any, len(cols))
	for i, c := range cols {
		vals[i] = r[c]
	}
	return vals
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// insertSQL assembles an INSERT statement. A table expression already
// containing " INTO " is used verbatim after the INSERT keyword, letting
// callers inject prefixes like "OR IGNORE INTO t".
func insertSQL(table string, columns []string, suffix ...string) string {
	head := "INSERT INTO " + table
	if strings.Contains(strings.ToUpper(table), " INTO ") {
		head = "INSERT " + table
	}
	sqlText := head + " (" + strings.Join(columns, ", ") + ") VALUES (" + placeholders(len(columns)) + ")"
	if len(suffix) > 0 {
		sqlText += " " + strings.Join(suffix, " ")
	}
	return sqlText
}

// updateSQL assembles an UPDATE statement keyed on keyColumn. A table
// expression already containing " SET " is used verbatim with the
// assignment list appended after it, letting callers inject custom SET
// clauses.
func updateSQL(table string, columns []string, keyColumn string, suffix ...string) string {
	assigns := make([]string, len(columns))
	for i, c := range columns {
		assigns[i] = c + " = ?"
	}
	sqlText := "UPDATE " + table
	if strings.Contains(strings.ToUpper(table), " SET ") {
		sqlText += " " + strings.Join(assigns, ", ")
	} else {
		sqlText += " SET " + strings.Join(assigns, ", ")
	}
	sqlText += " WHERE " + keyColumn + " = ?"
	if len(suffix) > 0 {
		sqlText += " " + strings.Join(suffix, " ")
	}
	return sqlText
}

// Insert prepares an INSERT over the given columns and returns its
// statement ID for repeated InsertRow calls.
func (c *Conn) Insert(table string, columns []string, suffix ...string) StatementID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prepareLocked(driver.FetchIndexed, insertSQL(table, columns, suffix...))
}

// InsertRow executes a prepared INSERT with one value row and returns the
// inserted row ID.
func (c *Conn) InsertRow(id StatementID, values ...any) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.execLocked(id, values)
}

// InsertRecord is the one-shot variant: prepare, execute the single record,
// close. The returned ID matches what the three-step path would produce.
func (c *Conn) InsertRecord(table string, rec Record, suffix ...string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cols := rec.columns()
	id := c.prepareLocked(driver.FetchIndexed, insertSQL(table, cols, suffix...))
	if id == NoStatement {
		return 0, false
	}
	res, ok := c.execLocked(id, rec.values(cols))
	c.closeLocked(id)
	return res, ok
}

// Update prepares an UPDATE over the given columns keyed on keyColumn and
// returns its statement ID for repeated UpdateRow calls.
func (c *Conn) Update(table string, columns []string, keyColumn string, suffix ...string) StatementID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prepareLocked(driver.FetchIndexed, updateSQL(table, columns, keyColumn, suffix...))
}

// UpdateRow executes a prepared UPDATE against the row identified by key
// and returns the affected-row count.
func (c *Conn) UpdateRow(id StatementID, key any, values ...any) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.execLocked(id, appendKey(values, key))
}

// UpdateRecord is the one-shot single-record variant of Update.
func (c *Conn) UpdateRecord(table string, rec Record, keyColumn string, key any) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cols := rec.columns()
	id := c.prepareLocked(driver.FetchIndexed, updateSQL(table, cols, keyColumn))
	if id == NoStatement {
		return 0, false
	}
	res, ok := c.execLocked(id, appendKey(rec.values(cols), key))
	c.closeLocked(id)
	return res, ok
}

// Upsert prepares an insert-or-update unit: a SELECT lookup on keyColumn
// whose composite set references a paired UPDATE and a paired INSERT (the
// insert additionally carries keyColumn). The returned ID is the lookup's;
// closing it closes all three. The table must be a bare table name.
func (c *Conn) Upsert(table string, columns []string, keyColumn string) StatementID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.upsertLocked(table, columns, keyColumn)
}

func (c *Conn) upsertLocked(table string, columns []string, keyColumn string) StatementID {
	lookup := c.prepareLocked(driver.FetchIndexed,
		"SELECT "+keyColumn+" FROM "+table+" WHERE "+keyColumn+" = ?")
	if lookup == NoStatement {
		return NoStatement
	}
	update := c.prepareLocked(driver.FetchIndexed, updateSQL(table, columns, keyColumn))
	insert := c.prepareLocked(driver.FetchIndexed,
		insertSQL(table, append(append([]string{}, columns...), keyColumn)))
	if update == NoStatement || insert == NoStatement {
		c.closeLocked(update)
		c.closeLocked(insert)
		c.closeLocked(lookup)
		return NoStatement
	}
	c.stmts[lookup].composite = &upsertSet{update: update, insert: insert}
	return lookup
}

// UpsertRow executes a prepared upsert unit for one record. The lookup runs
// first; when the key exists the paired UPDATE runs and the key itself is
// returned, otherwise the paired INSERT runs and its inserted row ID is
// returned. The lookup and mutation are not wrapped in a transaction, so
// concurrent upserts on the same key may race.
func (c *Conn) UpsertRow(id StatementID, key any, values ...any) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.upsertRowLocked(id, key, values)
}

func (c *Conn) upsertRowLocked(id StatementID, key any, values []any) (any, bool) {
	s, ok := c.stmts[id]
	if !ok || s.composite == nil {
		return nil, false
	}
	if _, ok := c.execLocked(id, []any{key}); !ok {
		return nil, false
	}
	_, found := s.handle.Fetch(s.style)
	if found {
		if _, ok := c.execLocked(s.composite.update, appendKey(values, key)); !ok {
			return nil, false
		}
		return key, true
	}
	res, ok := c.execLocked(s.composite.insert, appendKey(values, key))
	if !ok {
		return nil, false
	}
	return res, true
}

// UpsertRecord is the one-shot single-record variant of Upsert.
func (c *Conn) UpsertRecord(table string, rec Record, keyColumn string, key any) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cols := rec.columns()
	id := c.upsertLocked(table, cols, keyColumn)
	if id == NoStatement {
		return nil, false
	}
	res, ok := c.upsertRowLocked(id, key, rec.values(cols))
	c.closeLocked(id)
	return res, ok
}

func appendKey(values []any, key any) []any {
	return append(append(make([]any, 0, len(values)+1), values...), key)
}
