package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlstash/sqlstash/internal/driver"
)

func TestQueryReturnsLiveStatement(t *testing.T) {
	drv := &stubDriver{queue: []*stubHandle{
		{rows: []driver.Row{indexedRow(1), indexedRow(2)}},
	}}
	c := NewConn(drv)

	id, ok := c.Query("SELECT id FROM pages")
	require.True(t, ok)
	require.NotEqual(t, NoStatement, id)

	row, ok := c.Fetch(id)
	require.True(t, ok)
	assert.Equal(t, 1, row.First())
	c.CloseStmt(id)
}

func TestQueryRejectsNonSelect(t *testing.T) {
	drv := &stubDriver{}
	c := NewConn(drv)

	id, ok := c.Query("DELETE FROM pages")
	assert.False(t, ok)
	assert.Equal(t, NoStatement, id)
	// The rejected statement was auto-closed.
	assert.Equal(t, 0, c.Live())
	assert.True(t, drv.handles[0].closed)
}

func TestQueryAutoClosesOnExecFailure(t *testing.T) {
	drv := &stubDriver{queue: []*stubHandle{{queryErr: errors.New("no such table: pages")}}}
	c := NewConn(drv)

	_, ok := c.Query("SELECT id FROM pages")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Live())

	entry, _ := c.Log().Entry(1)
	assert.Contains(t, entry.Errors[0], "no such table")
}

func TestAllDrainsAndCloses(t *testing.T) {
	drv := &stubDriver{queue: []*stubHandle{
		{rows: []driver.Row{indexedRow("a"), indexedRow("b"), indexedRow("c")}},
	}}
	c := NewConn(drv)

	rows := c.All("SELECT slug FROM pages")
	assert.Len(t, rows, 3)
	assert.Equal(t, 0, c.Live())

	// A drained and closed statement fetches nothing.
	_, ok := c.Fetch(1)
	assert.False(t, ok)
}

func TestAllEmptyResultIsNotNil(t *testing.T) {
	c := NewConn(&stubDriver{})
	rows := c.All("SELECT slug FROM pages")
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestAllOnFailureReturnsEmpty(t *testing.T) {
	drv := &stubDriver{prepareErr: errors.New("syntax error")}
	rows := NewConn(drv).All("SELEC slug FROM pages")
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestIDsCoercion(t *testing.T) {
	drv := &stubDriver{queue: []*stubHandle{
		{rows: []driver.Row{
			indexedRow(int64(1)),
			indexedRow("2"),
			indexedRow([]byte("3")),
		}},
	}}
	c := NewConn(drv)

	ids, ok := c.IDs("SELECT id FROM pages")
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestIDsEmptyIsFalse(t *testing.T) {
	c := NewConn(&stubDriver{})
	ids, ok := c.IDs("SELECT id FROM pages WHERE 1 = 0")
	assert.False(t, ok)
	assert.Nil(t, ids)
}

func TestRowFirstOnly(t *testing.T) {
	drv := &stubDriver{queue: []*stubHandle{
		{rows: []driver.Row{indexedRow("first"), indexedRow("second")}},
	}}
	c := NewConn(drv)

	row, ok := c.Row("SELECT slug FROM pages")
	require.True(t, ok)
	assert.Equal(t, "first", row.First())
	assert.Equal(t, 0, c.Live())
}

func TestRowEmptyIsFalse(t *testing.T) {
	row, ok := NewConn(&stubDriver{}).Row("SELECT slug FROM pages WHERE 1 = 0")
	assert.False(t, ok)
	assert.Empty(t, row.Values)
}

func TestValueFirstColumn(t *testing.T) {
	drv := &stubDriver{queue: []*stubHandle{
		{rows: []driver.Row{indexedRow(int64(0), "extra")}},
	}}
	c := NewConn(drv)

	// A COUNT over an empty table still yields one row, so Value returns
	// the zero rather than failing.
	v, ok := c.Value("SELECT COUNT(*) FROM pages")
	require.True(t, ok)
	assert.Equal(t, int64(0), v)
}

func TestValueEmptyIsFalse(t *testing.T) {
	v, ok := NewConn(&stubDriver{}).Value("SELECT slug FROM pages WHERE 1 = 0")
	assert.False(t, ok)
	assert.Nil(t, v)
}
