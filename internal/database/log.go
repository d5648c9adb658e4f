package database

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// LogEntry accumulates usage counters for one prepared statement. Entries
// are created at prepare time and outlive the statement itself.
type LogEntry struct {
	ID          StatementID
	SQL         string
	Count       int
	PrepareTime time.Duration
	ExecTime    time.Duration
	Errors      []string
}

// AverageExec is the mean execution duration, zero when never executed.
func (e LogEntry) AverageExec() time.Duration {
	if e.Count == 0 {
		return 0
	}
	return e.ExecTime / time.Duration(e.Count)
}

// Total is the cumulative prepare plus execute duration.
func (e LogEntry) Total() time.Duration {
	return e.PrepareTime + e.ExecTime
}

// TimeString renders the total duration for humans, with a per-call
// qualifier when the statement ran more than once: "9 ms (~3 ea)".
func (e LogEntry) TimeString() string {
	total := e.Total()
	s := formatMs(total) + " ms"
	if e.Count > 1 {
		s += fmt.Sprintf(" (~%s ea)", formatMs(total/time.Duration(e.Count)))
	}
	return s
}

func formatMs(d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)
	return strconv.FormatFloat(ms, 'f', -1, 64)
}

// ErrorTally collapses the recorded error strings into frequency counts.
func (e LogEntry) ErrorTally() map[string]int {
	if len(e.Errors) == 0 {
		return nil
	}
	tally := make(map[string]int, len(e.Errors))
	for _, msg := range e.Errors {
		tally[msg]++
	}
	return tally
}

// Field returns a single log field by name, or nil for unknown names.
func (e LogEntry) Field(name string) any {
	switch strings.ToLower(name) {
	case "sql":
		return e.SQL
	case "count":
		return e.Count
	case "prepare":
		return e.PrepareTime
	case "exec":
		return e.ExecTime
	case "avg":
		return e.AverageExec()
	case "total":
		return e.Total()
	case "time":
		return e.TimeString()
	case "errors":
		return e.ErrorTally()
	default:
		return nil
	}
}

// Log is the per-connection query log. IDs index entries 1:1 with the
// statement registry while statements are live, and keep indexing them
// after close.
type Log struct {
	mu      sync.Mutex
	entries []*LogEntry
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// open creates the entry for a new statement and returns its ID.
func (l *Log) open(sqlText string) StatementID {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := StatementID(len(l.entries) + 1)
	l.entries = append(l.entries, &LogEntry{ID: id, SQL: sqlText})
	return id
}

func (l *Log) addPrepare(id StatementID, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e := l.at(id); e != nil {
		e.PrepareTime += d
	}
}

func (l *Log) addExec(id StatementID, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e := l.at(id); e != nil {
		e.Count++
		e.ExecTime += d
	}
}

func (l *Log) addError(id StatementID, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e := l.at(id); e != nil {
		e.Errors = append(e.Errors, msg)
	}
}

func (l *Log) at(id StatementID) *LogEntry {
	if id < 1 || int(id) > len(l.entries) {
		return nil
	}
	return l.entries[id-1]
}

// Entry returns a copy of the entry for id, false if the ID was never
// issued.
func (l *Log) Entry(id StatementID) (LogEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.at(id)
	if e == nil {
		return LogEntry{}, false
	}
	return e.snapshot(), true
}

// Last returns a copy of the most recently created entry, false when the
// log is empty.
func (l *Log) Last() (LogEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return LogEntry{}, false
	}
	return l.entries[len(l.entries)-1].snapshot(), true
}

// Entries returns copies of every entry in issue order.
func (l *Log) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.snapshot()
	}
	return out
}

// Len is the number of entries ever issued.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Reset discards all history. IDs issued afterwards restart at 1, so Reset
// must only be called when no statements are live.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

func (e *LogEntry) snapshot() LogEntry {
	out := *e
	out.Errors = append([]string(nil), e.Errors...)
	return out
}
