// Command sqlstash-smoke exercises the statement registry end to end
// against a real database file and emits a JSON step report.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sqlstash/sqlstash/internal/metrics"
	"github.com/sqlstash/sqlstash/pkg/sqlstash"
)

type StepResult struct {
	Name      string `json:"name"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

type Report struct {
	Driver     string       `json:"driver"`
	DSN        string       `json:"dsn"`
	StartedAt  time.Time    `json:"started_at"`
	DurationMs int64        `json:"duration_ms"`
	Steps      []StepResult `json:"steps"`
	Statements []Statement  `json:"statements"`
	Passed     bool         `json:"passed"`
}

type Statement struct {
	ID    int    `json:"id"`
	SQL   string `json:"sql"`
	Count int    `json:"count"`
	Time  string `json:"time"`
}

func main() {
	driverName := flag.String("driver", "sqlite3", "database/sql driver name")
	dsn := flag.String("dsn", "file:sqlstash-smoke.db?mode=memory&cache=shared", "data source name")
	flag.Parse()

	metrics.InitFromEnv()

	start := time.Now()
	report := Report{Driver: *driverName, DSN: *dsn, StartedAt: start, Passed: true}

	conn := sqlstash.Open(*driverName, *dsn)
	defer func() {
		if err := conn.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close: %v\n", err)
		}
	}()

	step := func(name string, fn func() error) {
		t := time.Now()
		res := StepResult{Name: name, Success: true}
		if err := fn(); err != nil {
			res.Success = false
			res.Error = err.Error()
			report.Passed = false
		}
		res.ElapsedMs = time.Since(t).Milliseconds()
		report.Steps = append(report.Steps, res)
	}

	step("create-table", func() error {
		id := conn.Prepare("CREATE TABLE pages (id INTEGER PRIMARY KEY, slug TEXT UNIQUE, hits INTEGER)")
		if id == sqlstash.NoStatement {
			return lastLogError(conn)
		}
		defer conn.CloseStmt(id)
		if _, ok := conn.Exec(id); !ok {
			return lastLogError(conn)
		}
		return nil
	})

	var insertID sqlstash.StatementID
	step("insert-batch", func() error {
		insertID = conn.Insert("pages", []string{"slug", "hits"})
		if insertID == sqlstash.NoStatement {
			return lastLogError(conn)
		}
		for i, slug := range []string{"home", "about", "contact"} {
			if _, ok := conn.InsertRow(insertID, slug, i*10); !ok {
				return lastLogError(conn)
			}
		}
		conn.CloseStmt(insertID)
		return nil
	})

	step("insert-record", func() error {
		if _, ok := conn.InsertRecord("pages", sqlstash.Record{"slug": "news", "hits": 7}); !ok {
			return lastLogError(conn)
		}
		return nil
	})

	step("upsert", func() error {
		up := conn.Upsert("pages", []string{"hits"}, "slug")
		if up == sqlstash.NoStatement {
			return lastLogError(conn)
		}
		defer conn.CloseStmt(up)
		if _, ok := conn.UpsertRow(up, "home", 99); !ok {
			return fmt.Errorf("upsert existing slug failed")
		}
		if _, ok := conn.UpsertRow(up, "blog", 1); !ok {
			return fmt.Errorf("upsert new slug failed")
		}
		return nil
	})

	step("query-shortcuts", func() error {
		rows := conn.All("SELECT slug, hits FROM pages ORDER BY slug")
		if len(rows) != 5 {
			return fmt.Errorf("expected 5 rows, got %d", len(rows))
		}
		if _, ok := conn.IDs("SELECT id FROM pages"); !ok {
			return fmt.Errorf("ids returned no rows")
		}
		v, ok := conn.Value("SELECT COUNT(*) FROM pages")
		if !ok {
			return fmt.Errorf("value failed")
		}
		fmt.Fprintf(os.Stderr, "page count: %v\n", v)
		return nil
	})

	for _, e := range conn.Log().Entries() {
		report.Statements = append(report.Statements, Statement{
			ID:    int(e.ID),
			SQL:   e.SQL,
			Count: e.Count,
			Time:  e.TimeString(),
		})
	}
	report.DurationMs = time.Since(start).Milliseconds()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
	if !report.Passed {
		os.Exit(1)
	}
}

func lastLogError(conn *sqlstash.Conn) error {
	if entry, ok := conn.Log().Last(); ok && len(entry.Errors) > 0 {
		return fmt.Errorf("%s", entry.Errors[len(entry.Errors)-1])
	}
	return fmt.Errorf("operation failed")
}
