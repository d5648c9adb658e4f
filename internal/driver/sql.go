package driver

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQL is a Driver backed by sqlx over any registered database/sql driver.
// The connection is opened lazily on the first Prepare (or an explicit
// Connect) so that constructing a Conn never touches the network.
type SQL struct {
	driverName string
	dsn        string

	mu sync.Mutex
	db *sqlx.DB

	maxOpenConns    int
	maxIdleConns    int
	connMaxIdleTime time.Duration
	connMaxLifetime time.Duration
}

// NewSQL returns an unconnected driver for the named database/sql driver
// and data source.
func NewSQL(driverName, dsn string) *SQL {
	return &SQL{driverName: driverName, dsn: dsn}
}

// Tune records connection pool limits applied when the connection opens.
func (d *SQL) Tune(maxOpen, maxIdle int, maxIdleTime, maxLifetime time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.maxOpenConns = maxOpen
	d.maxIdleConns = maxIdle
	d.connMaxIdleTime = maxIdleTime
	d.connMaxLifetime = maxLifetime
	if d.db != nil {
		d.tuneLocked()
	}
}

func (d *SQL) tuneLocked() {
	if d.maxOpenConns > 0 {
		d.db.SetMaxOpenConns(d.maxOpenConns)
	}
	if d.maxIdleConns > 0 {
		d.db.SetMaxIdleConns(d.maxIdleConns)
	}
	if d.connMaxIdleTime > 0 {
		d.db.SetConnMaxIdleTime(d.connMaxIdleTime)
	}
	if d.connMaxLifetime > 0 {
		d.db.SetConnMaxLifetime(d.connMaxLifetime)
	}
}

// Connect opens the underlying connection if it is not open yet.
func (d *SQL) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db != nil {
		return nil
	}
	db, err := sqlx.Connect(d.driverName, d.dsn)
	if err != nil {
		return fmt.Errorf("driver: connect %s: %w", d.driverName, err)
	}
	d.db = db
	d.tuneLocked()
	return nil
}

// DB exposes the underlying sqlx handle, nil until connected.
func (d *SQL) DB() *sqlx.DB {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.db
}

func (d *SQL) Prepare(sqlText string) (Handle, error) {
	if err := d.Connect(); err != nil {
		return nil, err
	}
	stmt, err := d.db.Preparex(sqlText)
	if err != nil {
		return nil, fmt.Errorf("driver: prepare: %w", err)
	}
	return &sqlHandle{stmt: stmt}, nil
}

// Escape renders v as a SQL literal for debug display only.
func (d *SQL) Escape(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if t {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case []byte:
		return fmt.Sprintf("X'%x'", t)
	case time.Time:
		return "'" + t.Format("2006-01-02 15:04:05") + "'"
	case string:
		return "'" + strings.ReplaceAll(t, "'", "''") + "'"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprintf("%v", t), "'", "''") + "'"
	}
}

func (d *SQL) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// sqlHandle is the Handle implementation for SQL. A handle holds at most one
// open row cursor; re-executing discards the previous cursor.
type sqlHandle struct {
	stmt *sqlx.Stmt
	rows *sqlx.Rows
	cols []string
}

func (h *sqlHandle) Query(args []any) error {
	h.discard()
	rows, err := h.stmt.Queryx(args...)
	if err != nil {
		return err
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return err
	}
	h.rows = rows
	h.cols = cols
	return nil
}

func (h *sqlHandle) Exec(args []any) (ExecInfo, error) {
	res, err := h.stmt.Exec(args...)
	if err != nil {
		return ExecInfo{}, err
	}
	info := ExecInfo{}
	if id, err := res.LastInsertId(); err == nil {
		info.LastInsertID = id
	}
	if n, err := res.RowsAffected(); err == nil {
		info.AffectedRows = n
	}
	return info, nil
}

func (h *sqlHandle) Fetch(style FetchStyle) (Row, bool) {
	if h.rows == nil {
		return Row{}, false
	}
	if !h.rows.Next() {
		h.discard()
		return Row{}, false
	}
	vals, err := h.rows.SliceScan()
	if err != nil {
		log.Printf("sqlstash: scan row: %v", err)
		h.discard()
		return Row{}, false
	}
	return shape(h.cols, vals, style), true
}

func (h *sqlHandle) Close() error {
	h.discard()
	return h.stmt.Close()
}

func (h *sqlHandle) discard() {
	if h.rows != nil {
		h.rows.Close()
		h.rows = nil
		h.cols = nil
	}
}
