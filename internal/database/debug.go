package database

import "strings"

// Debug renders a statement's SQL with args substituted for each positional
// marker in order, using the driver's escape primitive. The result is for
// human inspection only and is never executed. The statement's log entry
// supplies the SQL text, so Debug works even after the statement is closed.
func (c *Conn) Debug(id StatementID, args ...any) string {
	entry, ok := c.log.Entry(id)
	if !ok {
		return ""
	}
	row := normalizeArgs(args, strings.Count(entry.SQL, "?"))

	var b strings.Builder
	next := 0
	for _, r := range entry.SQL {
		if r == '?' && next < len(row) {
			b.WriteString(c.drv.Escape(row[next]))
			next++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
