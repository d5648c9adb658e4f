package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogIssuesSequentialIDs(t *testing.T) {
	l := NewLog()
	assert.Equal(t, StatementID(1), l.open("SELECT 1"))
	assert.Equal(t, StatementID(2), l.open("SELECT 2"))
	assert.Equal(t, 2, l.Len())

	e, ok := l.Entry(1)
	require.True(t, ok)
	assert.Equal(t, "SELECT 1", e.SQL)

	last, ok := l.Last()
	require.True(t, ok)
	assert.Equal(t, StatementID(2), last.ID)
}

func TestLogUnknownEntry(t *testing.T) {
	l := NewLog()
	_, ok := l.Entry(1)
	assert.False(t, ok)
	_, ok = l.Last()
	assert.False(t, ok)
}

func TestLogAccumulation(t *testing.T) {
	l := NewLog()
	id := l.open("UPDATE t SET a = ?")
	l.addPrepare(id, 2*time.Millisecond)
	l.addExec(id, 3*time.Millisecond)
	l.addExec(id, 5*time.Millisecond)
	l.addError(id, "boom")
	l.addError(id, "boom")

	e, ok := l.Entry(id)
	require.True(t, ok)
	assert.Equal(t, 2, e.Count)
	assert.Equal(t, 2*time.Millisecond, e.PrepareTime)
	assert.Equal(t, 8*time.Millisecond, e.ExecTime)
	assert.Equal(t, 4*time.Millisecond, e.AverageExec())
	assert.Equal(t, 10*time.Millisecond, e.Total())
	assert.Equal(t, map[string]int{"boom": 2}, e.ErrorTally())
}

func TestLogAverageWithoutExecutions(t *testing.T) {
	e := LogEntry{}
	assert.Equal(t, time.Duration(0), e.AverageExec())
	assert.Nil(t, e.ErrorTally())
}

func TestTimeStringRepeatedExecution(t *testing.T) {
	e := LogEntry{Count: 3, ExecTime: 9 * time.Millisecond}
	assert.Equal(t, "9 ms (~3 ea)", e.TimeString())
}

func TestTimeStringSingleExecution(t *testing.T) {
	e := LogEntry{Count: 1, ExecTime: 9 * time.Millisecond}
	assert.Equal(t, "9 ms", e.TimeString())
}

func TestTimeStringIncludesPrepare(t *testing.T) {
	e := LogEntry{Count: 1, PrepareTime: 1 * time.Millisecond, ExecTime: 2 * time.Millisecond}
	assert.Equal(t, "3 ms", e.TimeString())
}

func TestLogEntryField(t *testing.T) {
	e := LogEntry{
		SQL:      "SELECT 1",
		Count:    3,
		ExecTime: 9 * time.Millisecond,
		Errors:   []string{"x"},
	}
	assert.Equal(t, "SELECT 1", e.Field("sql"))
	assert.Equal(t, 3, e.Field("count"))
	assert.Equal(t, 9*time.Millisecond, e.Field("exec"))
	assert.Equal(t, 3*time.Millisecond, e.Field("avg"))
	assert.Equal(t, "9 ms (~3 ea)", e.Field("time"))
	assert.Equal(t, map[string]int{"x": 1}, e.Field("errors"))
	assert.Nil(t, e.Field("bogus"))
	// Field names are case-insensitive.
	assert.Equal(t, 3, e.Field("Count"))
}

func TestLogReset(t *testing.T) {
	l := NewLog()
	l.open("SELECT 1")
	l.Reset()
	assert.Equal(t, 0, l.Len())
	// IDs restart after a reset.
	assert.Equal(t, StatementID(1), l.open("SELECT 2"))
}

func TestLogEntryIsACopy(t *testing.T) {
	l := NewLog()
	id := l.open("SELECT 1")
	e, ok := l.Entry(id)
	require.True(t, ok)
	e.Count = 99
	e.Errors = append(e.Errors, "mutated")

	fresh, ok := l.Entry(id)
	require.True(t, ok)
	assert.Equal(t, 0, fresh.Count)
	assert.Empty(t, fresh.Errors)
}
