package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// stubConn is an in-memory database/sql connection that understands the
// statements issued by Store.
type stubConn struct {
	mu       sync.Mutex
	execs    []string
	rows     map[string]stubRow
	failPing bool
	failExec bool
}

type stubRow struct {
	id       string
	loadedAt time.Time
	items    int64
	payload  []byte
}

var stubSeq atomic.Int64

// useStubDB points sqlOpen at a fresh stub connection for the duration of t.
func useStubDB(t *testing.T) *stubConn {
	t.Helper()
	conn := &stubConn{rows: make(map[string]stubRow)}
	name := fmt.Sprintf("stubpg%d", stubSeq.Add(1))
	sql.Register(name, &stubDriver{conn: conn})

	prev := sqlOpen
	sqlOpen = func(_, _ string) (*sql.DB, error) { return sql.Open(name, "stub") }
	t.Cleanup(func() { sqlOpen = prev })
	return conn
}

type stubDriver struct {
	conn *stubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error)           { return nil, fmt.Errorf("not implemented") }

func (c *stubConn) Ping(context.Context) error {
	if c.failPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execs = append(c.execs, query)
	if c.failExec {
		return nil, fmt.Errorf("exec fail")
	}

	switch query {
	case createTable:
		return driver.RowsAffected(0), nil
	case upsertSnapshot:
		c.rows[args[0].Value.(string)] = stubRow{
			id:       args[1].Value.(string),
			loadedAt: args[2].Value.(time.Time),
			items:    args[3].Value.(int64),
			payload:  args[4].Value.([]byte),
		}
		return driver.RowsAffected(1), nil
	case deleteSnapshot:
		ws := args[0].Value.(string)
		if _, ok := c.rows[ws]; !ok {
			return driver.RowsAffected(0), nil
		}
		delete(c.rows, ws)
		return driver.RowsAffected(1), nil
	}
	return nil, fmt.Errorf("unexpected exec: %s", query)
}

func (c *stubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch query {
	case selectPayload:
		out := &stubRows{columns: []string{"payload"}}
		if row, ok := c.rows[args[0].Value.(string)]; ok {
			out.values = append(out.values, []driver.Value{row.payload})
		}
		return out, nil
	case selectInfos:
		workspaces := make([]string, 0, len(c.rows))
		for ws := range c.rows {
			workspaces = append(workspaces, ws)
		}
		sort.Strings(workspaces)
		out := &stubRows{columns: []string{"snapshot_id", "workspace", "loaded_at", "item_count"}}
		for _, ws := range workspaces {
			row := c.rows[ws]
			out.values = append(out.values, []driver.Value{row.id, ws, row.loadedAt, row.items})
		}
		return out, nil
	}
	return nil, fmt.Errorf("unexpected query: %s", query)
}

type stubRows struct {
	columns []string
	values  [][]driver.Value
	pos     int
}

func (r *stubRows) Columns() []string { return r.columns }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.values) {
		return io.EOF
	}
	copy(dest, r.values[r.pos])
	r.pos++
	return nil
}
