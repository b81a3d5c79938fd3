// Package repo persists the render ledger to postgres or clickhouse
package repo

import (
	"context"
	"errors"

	"tiba/internal/modkit/repokit"
	perr "tiba/internal/platform/errors"
	"tiba/internal/platform/store"
	"tiba/internal/services/api/workspace/domain"
)

// Ledger is the render ledger contract
type Ledger = domain.Ledger

const (
	pgSchema = `
create table if not exists render_ledger (
  request_id text not null,
  workspace_id text not null,
  widget text not null,
  generation bigint not null,
  seq bigint not null,
  event text not null,
  artifact text not null default '',
  error text not null default '',
  latency_ms bigint not null default 0,
  created_at timestamptz not null default now(),
  primary key (request_id, event)
)`

	pgIndex = `create index if not exists render_ledger_workspace_idx on render_ledger (workspace_id, created_at)`

	chSchema = `
CREATE TABLE IF NOT EXISTS render_ledger (
  request_id String,
  workspace_id String,
  widget LowCardinality(String),
  generation UInt64,
  seq UInt64,
  event LowCardinality(String),
  artifact String,
  error String,
  latency_ms UInt64,
  created_at DateTime64(3)
) ENGINE = MergeTree
ORDER BY (workspace_id, created_at)`
)

type (
	// PG implements the Ledger binder using Postgres
	PG struct{}

	// queries holds the database query methods
	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres ledger binder
func NewPG() repokit.Binder[Ledger] { return PG{} }

// Bind binds a Postgres queryer to the Ledger implementation
func (PG) Bind(q repokit.Queryer) Ledger { return &queries{q: q} }

// EnsurePG creates the ledger table and its index when missing
func EnsurePG(ctx context.Context, q repokit.Queryer) error {
	return repokit.WithTx(ctx, q, func(q repokit.Queryer) error {
		for _, ddl := range []string{pgSchema, pgIndex} {
			if _, err := q.Exec(ctx, ddl); err != nil {
				return perr.FromPostgres(err, "create render ledger")
			}
		}
		return nil
	})
}

func (r *queries) Record(ctx context.Context, e domain.LedgerEntry) error {
	const sql = `
insert into render_ledger (request_id, workspace_id, widget, generation, seq, event, artifact, error, latency_ms, created_at)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
on conflict (request_id, event) do nothing
`
	_, err := r.q.Exec(ctx, sql,
		e.RequestID,
		e.Workspace,
		string(e.Kind),
		int64(e.Generation),
		int64(e.Seq),
		string(e.Event),
		e.Artifact,
		e.Error,
		e.Latency.Milliseconds(),
		e.At,
	)
	if err != nil {
		return perr.FromPostgresWithField(err, "record render")
	}
	return nil
}

// CH writes ledger rows to clickhouse
type CH struct{ c store.Clickhouse }

// NewCH creates a ClickHouse ledger
func NewCH(c store.Clickhouse) *CH { return &CH{c: c} }

// EnsureCH creates the ledger table when missing
func EnsureCH(ctx context.Context, c store.Clickhouse) error {
	return c.Exec(ctx, chSchema)
}

// Record implements Ledger
func (l *CH) Record(ctx context.Context, e domain.LedgerEntry) error {
	return l.c.Insert(ctx, "render_ledger", [][]any{{
		e.RequestID,
		e.Workspace,
		string(e.Kind),
		uint64(e.Generation),
		e.Seq,
		string(e.Event),
		e.Artifact,
		e.Error,
		uint64(max(0, e.Latency.Milliseconds())),
		e.At,
	}})
}

// Fanout records to every ledger and joins their errors
type Fanout []Ledger

// Record implements Ledger
func (f Fanout) Record(ctx context.Context, e domain.LedgerEntry) error {
	var errs []error
	for _, l := range f {
		if err := l.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
