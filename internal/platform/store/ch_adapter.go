package store

import (
	"context"
	"fmt"

	"tiba/internal/platform/store/ch"
)

// chAdapter exposes *ch.CH as a Clickhouse
type chAdapter struct{ c *ch.CH }

var (
	_ Clickhouse = chAdapter{}
	_ Pinger     = chAdapter{}
)

func (a chAdapter) Insert(ctx context.Context, table string, data any) error {
	rs, ok := data.([][]any)
	if !ok {
		return fmt.Errorf("store: clickhouse insert into %s wants [][]any, got %T", table, data)
	}
	return a.c.Insert(ctx, table, rs)
}

func (a chAdapter) Exec(ctx context.Context, sql string, args ...any) error {
	return a.c.Exec(ctx, sql, args...)
}

func (a chAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := a.c.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{r}, nil
}

func (a chAdapter) Ping(ctx context.Context) error { return a.c.Ping(ctx) }

func (a chAdapter) Close() error { return a.c.Close() }

// chRows drops the Close error ch.Rows reports
type chRows struct{ ch.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }
