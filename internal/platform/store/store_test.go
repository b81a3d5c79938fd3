package store

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeCH struct {
	pingErr  error
	closeErr error
	closed   bool
}

func (f *fakeCH) Exec(context.Context, string, ...any) error          { return nil }
func (f *fakeCH) Insert(context.Context, string, any) error           { return nil }
func (f *fakeCH) Query(context.Context, string, ...any) (Rows, error) { return nil, nil }
func (f *fakeCH) Ping(context.Context) error                          { return f.pingErr }
func (f *fakeCH) Close() error                                        { f.closed = true; return f.closeErr }

type fakeTx struct {
	Querier
	pingErr error
	closed  bool
}

func (f *fakeTx) Tx(ctx context.Context, fn func(Querier) error) error { return fn(f) }
func (f *fakeTx) Ping(context.Context) error                           { return f.pingErr }
func (f *fakeTx) Close() error                                         { f.closed = true; return nil }

func TestOpen_NoBackends(t *testing.T) {
	var buf bytes.Buffer
	s, err := Open(context.Background(), Config{}, WithLogger(zerolog.New(&buf)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.PG != nil || s.CH != nil {
		t.Fatalf("backends opened without being enabled")
	}
	if !strings.Contains(buf.String(), `"component":"store"`) || !strings.Contains(buf.String(), "store open") {
		t.Fatalf("log = %q", buf.String())
	}
	if err := s.Guard(context.Background()); err != nil {
		t.Fatalf("Guard: %v", err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpen_Failures(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tests := map[string]Config{
		"pg bad url":     {PG: PGConfig{Enabled: true, URL: "://ledger"}},
		"ch unreachable": {CH: CHConfig{Enabled: true, URL: "clickhouse://127.0.0.1:1/default?dial_timeout=200ms"}},
		"option":         {},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			var opts []Option
			if name == "option" {
				opts = append(opts, func(*Store) error { return errors.New("no logger") })
			}
			s, err := Open(ctx, cfg, opts...)
			if err == nil || s != nil {
				t.Fatalf("Open = %v, %v", s, err)
			}
		})
	}
}

func TestGuard(t *testing.T) {
	var nilStore *Store
	if err := nilStore.Guard(context.Background()); err == nil {
		t.Fatalf("nil store should fail")
	}

	s := &Store{PG: &fakeTx{pingErr: errors.New("too many clients")}, CH: &fakeCH{pingErr: errors.New("auth")}}
	err := s.Guard(context.Background())
	if err == nil || !strings.Contains(err.Error(), "pg: too many clients") || !strings.Contains(err.Error(), "ch: auth") {
		t.Fatalf("Guard = %v", err)
	}

	s = &Store{PG: &fakeTx{}, CH: &fakeCH{}}
	if err := s.Guard(context.Background()); err != nil {
		t.Fatalf("healthy Guard = %v", err)
	}
}

func TestClose(t *testing.T) {
	pgc, chc := &fakeTx{}, &fakeCH{closeErr: errors.New("broken pipe")}
	s := &Store{PG: pgc, CH: chc}
	if err := s.Close(context.Background()); err == nil || !strings.Contains(err.Error(), "broken pipe") {
		t.Fatalf("Close = %v", err)
	}
	if !pgc.closed || !chc.closed {
		t.Fatalf("pg closed %v ch closed %v", pgc.closed, chc.closed)
	}

	var nilStore *Store
	if err := nilStore.Close(context.Background()); err != nil {
		t.Fatalf("nil Close = %v", err)
	}
}
