package ch

import (
	"context"
	"errors"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"tiba/internal/platform/testkit"
)

type fakeBatch struct {
	driver.Batch
	rows    [][]any
	sent    bool
	aborted bool
	failAt  int
}

func (b *fakeBatch) Append(v ...any) error {
	if b.failAt > 0 && len(b.rows)+1 == b.failAt {
		return errors.New("bad row")
	}
	b.rows = append(b.rows, v)
	return nil
}

func (b *fakeBatch) Send() error  { b.sent = true; return nil }
func (b *fakeBatch) Abort() error { b.aborted = true; return nil }

type fakeConn struct {
	batch   *fakeBatch
	query   string
	pingErr error
	closed  bool
}

func (c *fakeConn) PrepareBatch(_ context.Context, q string, _ ...driver.PrepareBatchOption) (driver.Batch, error) {
	c.query = q
	return c.batch, nil
}

func (c *fakeConn) Exec(_ context.Context, q string, _ ...any) error {
	c.query = q
	return nil
}

func (c *fakeConn) Query(context.Context, string, ...any) (driver.Rows, error) {
	return nil, errors.New("no rows")
}

func (c *fakeConn) Ping(context.Context) error { return c.pingErr }
func (c *fakeConn) Close() error               { c.closed = true; return nil }

func TestOpen_DialsAndPings(t *testing.T) {
	fc := &fakeConn{}
	var got *clickhouse.Options
	testkit.Swap(t, &dial, func(o *clickhouse.Options) (conn, error) { got = o; return fc, nil })

	c, err := Open(context.Background(), Config{URL: "clickhouse://localhost:9000/tiba", Role: "api"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got == nil || got.Auth.Database != "tiba" {
		t.Fatalf("options = %+v", got)
	}
	if len(got.ClientInfo.Products) == 0 || got.ClientInfo.Products[0].Name != "tiba" {
		t.Fatalf("client info = %+v", got.ClientInfo)
	}
	if err := c.Close(); err != nil || !fc.closed {
		t.Fatalf("Close: %v closed=%v", err, fc.closed)
	}
}

func TestOpen_PingFailureCloses(t *testing.T) {
	fc := &fakeConn{pingErr: errors.New("refused")}
	testkit.Swap(t, &dial, func(*clickhouse.Options) (conn, error) { return fc, nil })

	if _, err := Open(context.Background(), Config{URL: "clickhouse://localhost:9000"}); err == nil {
		t.Fatalf("want ping error")
	}
	if !fc.closed {
		t.Fatalf("connection should be closed after failed ping")
	}
}

func TestOpen_BadDSN(t *testing.T) {
	if _, err := Open(context.Background(), Config{URL: "://nope"}); err == nil {
		t.Fatalf("want dsn error")
	}
}

func TestInsert_Batches(t *testing.T) {
	fb := &fakeBatch{}
	c := &CH{conn: &fakeConn{batch: fb}}

	err := c.Insert(context.Background(), "tiba.render_ledger", [][]any{{"a", 1}, {"b", 2}})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if len(fb.rows) != 2 || !fb.sent {
		t.Fatalf("batch = %+v", fb)
	}
}

func TestInsert_AppendFailureAborts(t *testing.T) {
	fb := &fakeBatch{failAt: 2}
	c := &CH{conn: &fakeConn{batch: fb}}

	if err := c.Insert(context.Background(), "t", [][]any{{1}, {2}}); err == nil {
		t.Fatalf("want append error")
	}
	if !fb.aborted || fb.sent {
		t.Fatalf("batch should be aborted, got %+v", fb)
	}
}

func TestInsert_Guards(t *testing.T) {
	c := &CH{}
	if err := c.Insert(context.Background(), "t; drop table x", [][]any{{1}}); err == nil {
		t.Fatalf("want invalid table error")
	}
	if err := c.Insert(context.Background(), "t", nil); err != nil {
		t.Fatalf("empty insert should be a no-op: %v", err)
	}
	if err := c.Insert(context.Background(), "t", [][]any{{1}}); !errors.Is(err, ErrClosed) {
		t.Fatalf("want ErrClosed, got %v", err)
	}
	if _, err := c.Query(context.Background(), "SELECT 1"); !errors.Is(err, ErrClosed) {
		t.Fatalf("want ErrClosed, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close on unconnected client: %v", err)
	}
}

func TestClientInfo_SkipsBlank(t *testing.T) {
	info := clientInfo(" api ", "")
	names := map[string]string{}
	for _, p := range info.Products {
		names[p.Name] = p.Version
	}
	if names["role"] != "api" {
		t.Fatalf("role = %q", names["role"])
	}
	if _, ok := names["tag"]; ok {
		t.Fatalf("blank tag kept: %+v", info.Products)
	}
	if names["go"] == "" || names["commit"] == "" {
		t.Fatalf("products = %+v", info.Products)
	}
}
