package repo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tiba/internal/core/widget"
	"tiba/internal/modkit/repokit"
	perr "tiba/internal/platform/errors"
	"tiba/internal/services/api/workspace/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

type fakeQ struct {
	sql  string
	args []any
	ran  []string
	err  error
}

func (f *fakeQ) Exec(_ context.Context, sql string, args ...any) (repokit.CommandTag, error) {
	f.sql, f.args = sql, args
	f.ran = append(f.ran, sql)
	return nil, f.err
}

func (f *fakeQ) Query(context.Context, string, ...any) (repokit.Rows, error) { return nil, nil }
func (f *fakeQ) QueryRow(context.Context, string, ...any) repokit.Row         { return nil }

type fakeCH struct {
	table string
	rows  [][]any
	ddl   string
	err   error
}

func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error { f.ddl = sql; return f.err }
func (f *fakeCH) Insert(_ context.Context, table string, data any) error {
	f.table = table
	f.rows = data.([][]any)
	return f.err
}
func (f *fakeCH) Query(context.Context, string, ...any) (repokit.Rows, error) { return nil, nil }
func (f *fakeCH) Close() error                                                { return nil }

func entry() domain.LedgerEntry {
	return domain.LedgerEntry{
		RequestID:  "r1",
		Workspace:  "w1",
		Kind:       widget.Transitions,
		Generation: 3,
		Seq:        2,
		Event:      domain.EventRendered,
		Artifact:   "media/t.gv.svg",
		Latency:    1500 * time.Millisecond,
		At:         time.Unix(1700000000, 0).UTC(),
	}
}

func TestPG_Record(t *testing.T) {
	q := &fakeQ{}
	l := NewPG().Bind(q)
	if err := l.Record(context.Background(), entry()); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !strings.Contains(q.sql, "insert into render_ledger") {
		t.Fatalf("sql = %s", q.sql)
	}
	if len(q.args) != 10 || q.args[2] != "transitions" || q.args[8] != int64(1500) {
		t.Fatalf("args = %v", q.args)
	}
}

func TestPG_RecordMapsErrors(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "render_ledger_pkey"}
	err := NewPG().Bind(&fakeQ{err: dup}).Record(context.Background(), entry())
	if !perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
		t.Fatalf("duplicate row = %v", err)
	}
	err = NewPG().Bind(&fakeQ{err: errors.New("conn reset")}).Record(context.Background(), entry())
	if !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("driver error = %v", err)
	}
}

func TestEnsurePG(t *testing.T) {
	q := &fakeQ{}
	if err := EnsurePG(context.Background(), q); err != nil {
		t.Fatalf("EnsurePG: %v", err)
	}
	if len(q.ran) != 2 || !strings.Contains(q.ran[0], "create table if not exists render_ledger") || !strings.Contains(q.ran[1], "render_ledger_workspace_idx") {
		t.Fatalf("ran = %q", q.ran)
	}
	if err := EnsurePG(context.Background(), &fakeQ{err: errors.New("permission denied")}); !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("ddl failure = %v", err)
	}
}

func TestCH_Record(t *testing.T) {
	c := &fakeCH{}
	if err := NewCH(c).Record(context.Background(), entry()); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if c.table != "render_ledger" || len(c.rows) != 1 || len(c.rows[0]) != 10 {
		t.Fatalf("insert = %s %v", c.table, c.rows)
	}
	if c.rows[0][3] != uint64(3) || c.rows[0][5] != "rendered" {
		t.Fatalf("row = %v", c.rows[0])
	}
	if err := EnsureCH(context.Background(), c); err != nil || !strings.Contains(c.ddl, "MergeTree") {
		t.Fatalf("EnsureCH: %v %s", err, c.ddl)
	}
}

func TestFanout_JoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	ok := &fakeCH{}
	bad := NewPG().Bind(&fakeQ{err: boom})

	err := Fanout{NewCH(ok), bad}.Record(context.Background(), entry())
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if len(ok.rows) != 1 {
		t.Fatalf("healthy ledger should still record")
	}
}
